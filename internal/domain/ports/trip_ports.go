package ports

import (
	"context"
	"time"

	"github.com/voyago/tripmatch/internal/domain/models"
)

// MatchOutcome is the terminal result of one matching pass.
type MatchOutcome struct {
	Status       models.TripStatus
	DepartureHub string
	Matches      []models.DestinationMatch
	ErrorDetail  string
}

type TripStore interface {
	Create(ctx context.Context, trip models.TripRequest) error
	GetByID(ctx context.Context, id models.TripID) (models.TripRequest, error)
	Delete(ctx context.Context, id models.TripID) error

	// TransitionStatus applies expected→next only while the stored status still
	// equals expected, returning ErrStatusConflict otherwise. Entering matching
	// clears any previously persisted matches and error detail.
	TransitionStatus(ctx context.Context, id models.TripID, expected, next models.TripStatus) error

	// CompleteMatching persists the terminal outcome only while the record is
	// still matching, returning ErrStatusConflict otherwise. This is the guard
	// that keeps drained fetches from landing on deleted or superseded records.
	CompleteMatching(ctx context.Context, id models.TripID, outcome MatchOutcome) error
}

// Economics carries the indicative figures for one origin-destination pair.
// Nil fields are unknown (partial provider data).
type Economics struct {
	PriceAmount     *float64
	EmissionsKg     *float64
	StopCount       *int
	DurationMinutes *int
}

func (e Economics) HasAny() bool {
	return e.PriceAmount != nil || e.EmissionsKg != nil || e.StopCount != nil || e.DurationMinutes != nil
}

// Complete reports whether every figure is known.
func (e Economics) Complete() bool {
	return e.PriceAmount != nil && e.EmissionsKg != nil && e.StopCount != nil && e.DurationMinutes != nil
}

type FareQuoteSource interface {
	// FetchEconomics returns ErrQuotesUnavailable when the provider has no
	// quotes at all for the pair; any other error is a provider failure.
	FetchEconomics(ctx context.Context, originHub, destinationHub string, dates models.DateRange) (Economics, error)
}

type HubDirectory interface {
	// Resolve maps a free-text place name to a hub code, case-insensitively and
	// exactly. Unknown names fail with ErrLocationNotFound carrying the name.
	Resolve(name string) (string, error)
	// DisplayName is the reverse lookup, for presentation only.
	DisplayName(hubCode string) (string, bool)
	// Tags returns the destination's attribute tags for preference matching.
	Tags(hubCode string) []string
}

type CandidateSource interface {
	Candidates(ctx context.Context, trip models.TripRequest) ([]string, error)
}

type MatchEvent struct {
	TripID     models.TripID     `json:"trip_id"`
	Status     models.TripStatus `json:"status"`
	MatchCount int               `json:"match_count"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type EventPublisher interface {
	PublishMatchCompleted(ctx context.Context, event MatchEvent) error
}
