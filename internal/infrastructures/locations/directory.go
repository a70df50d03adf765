// Package locations maps free-text place names to transport-hub codes using an
// embedded reference table. The table is parsed once per process; lookups are
// exact and case-insensitive, never fuzzy.
package locations

import (
	"embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	derr "github.com/voyago/tripmatch/internal/domain/errors"
)

//go:embed hubs.csv
var referenceFS embed.FS

type entry struct {
	DisplayName string
	HubCode     string
	Lat         float64
	Lon         float64
	Tags        []string
}

// Directory is read-only after construction and safe for unsynchronized
// concurrent reads.
type Directory struct {
	byName map[string]entry
	byCode map[string]entry
}

var loadOnce = sync.OnceValues(parseReference)

// Open returns the process-wide directory, parsing the embedded table on the
// first call only.
func Open() (*Directory, error) {
	return loadOnce()
}

func parseReference() (*Directory, error) {
	f, err := referenceFS.Open("hubs.csv")
	if err != nil {
		return nil, fmt.Errorf("open hub reference table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 5

	// header
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("read hub reference header: %w", err)
	}

	d := &Directory{
		byName: make(map[string]entry),
		byCode: make(map[string]entry),
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read hub reference row: %w", err)
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse latitude for %q: %w", record[0], err)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("parse longitude for %q: %w", record[0], err)
		}

		e := entry{
			DisplayName: strings.TrimSpace(record[0]),
			HubCode:     strings.ToUpper(strings.TrimSpace(record[1])),
			Lat:         lat,
			Lon:         lon,
			Tags:        parseTags(record[4]),
		}

		d.byName[strings.ToLower(e.DisplayName)] = e
		d.byCode[e.HubCode] = e
	}

	return d, nil
}

func (d *Directory) Resolve(name string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	e, ok := d.byName[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", derr.ErrLocationNotFound, strings.TrimSpace(name))
	}
	return e.HubCode, nil
}

func (d *Directory) DisplayName(hubCode string) (string, bool) {
	e, ok := d.byCode[strings.ToUpper(strings.TrimSpace(hubCode))]
	if !ok {
		return "", false
	}
	return e.DisplayName, true
}

func (d *Directory) Tags(hubCode string) []string {
	e, ok := d.byCode[strings.ToUpper(strings.TrimSpace(hubCode))]
	if !ok {
		return nil
	}
	tags := make([]string, len(e.Tags))
	copy(tags, e.Tags)
	return tags
}

// Len reports the number of reference entries, for startup logging.
func (d *Directory) Len() int {
	return len(d.byName)
}

func parseTags(raw string) []string {
	parts := strings.Split(raw, "|")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.ToLower(strings.TrimSpace(p)); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
