// Package candidates supplies the candidate-destination set for a matching
// pass. The engine treats the source as opaque; this implementation serves a
// fixed, config-provided hub list.
package candidates

import (
	"context"
	"strings"

	"github.com/voyago/tripmatch/internal/domain/models"
)

type StaticSource struct {
	hubs []string
}

func NewStaticSource(hubs []string) *StaticSource {
	seen := make(map[string]struct{}, len(hubs))
	cleaned := make([]string, 0, len(hubs))
	for _, hub := range hubs {
		code := strings.ToUpper(strings.TrimSpace(hub))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		cleaned = append(cleaned, code)
	}
	return &StaticSource{hubs: cleaned}
}

func (s *StaticSource) Candidates(_ context.Context, _ models.TripRequest) ([]string, error) {
	out := make([]string, len(s.hubs))
	copy(out, s.hubs)
	return out, nil
}
