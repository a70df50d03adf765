package models

import "time"

type TripID string

type TripStatus string

const (
	StatusPending  TripStatus = "pending"
	StatusMatching TripStatus = "matching"
	StatusMatched  TripStatus = "matched"
	StatusError    TripStatus = "error"
)

// Terminal reports whether the status ends a matching pass.
func (s TripStatus) Terminal() bool {
	return s == StatusMatched || s == StatusError
}

type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Valid requires both bounds set and end not before start.
func (r DateRange) Valid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !r.End.Before(r.Start)
}

// TripRequest is the single mutable shared resource of the matching engine.
// Status and RankedMatches are owned by the orchestrator while a pass runs;
// all transitions go through the guarded store operations.
type TripRequest struct {
	ID                TripID             `json:"id"`
	OwnerRef          string             `json:"owner_ref"`
	DepartureLocation string             `json:"departure_location"`
	DepartureHub      string             `json:"departure_hub,omitempty"`
	Dates             DateRange          `json:"dates"`
	PreferenceTags    []string           `json:"preference_tags"`
	Status            TripStatus         `json:"status"`
	RankedMatches     []DestinationMatch `json:"ranked_matches,omitempty"`
	ErrorDetail       string             `json:"error_detail,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// DestinationMatch is one evaluated candidate. Numeric fields are nil when the
// provider returned partial data or the fetch degraded for this candidate.
type DestinationMatch struct {
	DestinationHub  string   `json:"destination_hub"`
	DisplayName     string   `json:"display_name,omitempty"`
	PriceAmount     *float64 `json:"price_amount,omitempty"`
	EmissionsKg     *float64 `json:"emissions_kg,omitempty"`
	StopCount       *int     `json:"stop_count,omitempty"`
	DurationMinutes *int     `json:"duration_minutes,omitempty"`
	CompositeScore  float64  `json:"composite_score"`
	ErrorDetail     string   `json:"error_detail,omitempty"`
}
