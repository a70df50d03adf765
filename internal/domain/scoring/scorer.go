// Package scoring ranks candidate destinations by a composite of flight
// economics and preference affinity. Pure and deterministic: no I/O, and
// identical inputs always produce identical scores and ordering.
package scoring

import (
	"sort"
	"strings"

	"github.com/voyago/tripmatch/internal/domain/ports"
)

type Candidate struct {
	Hub  string
	Econ ports.Economics
	// Tags are the destination's attribute tags (e.g. "mood:relaxed"),
	// matched against the trip's preference tags.
	Tags []string
}

type Scored struct {
	Hub   string
	Score float64
}

// Weights control the composite. The four economic terms are penalties (lower
// raw value is better); affinity is a reward.
type Weights struct {
	Price     float64
	Emissions float64
	Stops     float64
	Duration  float64
	Affinity  float64
}

func DefaultWeights() Weights {
	return Weights{Price: 0.40, Emissions: 0.25, Stops: 0.15, Duration: 0.20, Affinity: 0.45}
}

func (w Weights) economic() float64 {
	return w.Price + w.Emissions + w.Stops + w.Duration
}

// Rank scores every candidate and returns them sorted descending by score,
// ties broken by hub code ascending.
//
// Each economic dimension is min-max normalized within the candidate set, so a
// score is only comparable inside one pass. Unknown values normalize to the
// in-set worst, which keeps partial data from ever outranking complete data on
// the missing dimension. Dimensions where all candidates agree contribute
// nothing. Raising any one raw economic value, holding the rest fixed, can
// only lower the score.
func Rank(candidates []Candidate, preferenceTags []string, w Weights) []Scored {
	if len(candidates) == 0 {
		return []Scored{}
	}
	if w.economic() <= 0 {
		w = DefaultWeights()
	}

	price := newDimension(candidates, func(e ports.Economics) *float64 { return e.PriceAmount })
	emissions := newDimension(candidates, func(e ports.Economics) *float64 { return e.EmissionsKg })
	stops := newDimension(candidates, func(e ports.Economics) *float64 { return intValue(e.StopCount) })
	duration := newDimension(candidates, func(e ports.Economics) *float64 { return intValue(e.DurationMinutes) })

	prefs := tagSet(preferenceTags)
	total := w.economic() + w.Affinity

	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		penalty := w.Price*price.normalize(c.Econ.PriceAmount) +
			w.Emissions*emissions.normalize(c.Econ.EmissionsKg) +
			w.Stops*stops.normalize(intValue(c.Econ.StopCount)) +
			w.Duration*duration.normalize(intValue(c.Econ.DurationMinutes))
		reward := w.Affinity * affinity(c.Tags, prefs)
		scored = append(scored, Scored{Hub: c.Hub, Score: (w.economic() - penalty + reward) / total})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Hub < scored[j].Hub
	})

	return scored
}

// affinity is the fraction of the trip's preference tags the destination
// carries, in [0,1]. No preferences means no reward for anyone.
func affinity(tags []string, prefs map[string]struct{}) float64 {
	if len(prefs) == 0 {
		return 0
	}

	hits := 0
	for _, tag := range tags {
		if _, ok := prefs[normalizeTag(tag)]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(prefs))
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if t := normalizeTag(tag); t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// dimension holds the known-value bounds of one economic figure across the
// candidate set.
type dimension struct {
	min, max float64
	known    bool
}

func newDimension(candidates []Candidate, pick func(ports.Economics) *float64) dimension {
	var d dimension
	for _, c := range candidates {
		v := pick(c.Econ)
		if v == nil {
			continue
		}
		if !d.known || *v < d.min {
			d.min = *v
		}
		if !d.known || *v > d.max {
			d.max = *v
		}
		d.known = true
	}
	return d
}

// normalize maps a raw value to [0,1], non-decreasing in the input. Unknown
// values take 1 (the in-set worst); a dimension with no spread takes 0.
func (d dimension) normalize(v *float64) float64 {
	if !d.known || d.max == d.min {
		return 0
	}
	if v == nil {
		return 1
	}
	return (*v - d.min) / (d.max - d.min)
}

func intValue(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
