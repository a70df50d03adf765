package dto

type IndicativeSearchRequest struct {
	Query QueryDTO `json:"query"`
}

type QueryDTO struct {
	Market     string        `json:"market"`
	Locale     string        `json:"locale"`
	Currency   string        `json:"currency"`
	QueryLegs  []QueryLegDTO `json:"queryLegs"`
	CabinClass string        `json:"cabinClass"`
	Adults     int           `json:"adults"`
}

type QueryLegDTO struct {
	OriginPlace      PlaceDTO     `json:"originPlace"`
	DestinationPlace PlaceDTO     `json:"destinationPlace"`
	DateRange        DateRangeDTO `json:"dateRange"`
}

type PlaceDTO struct {
	IATA string `json:"iata"`
}

type DateRangeDTO struct {
	StartDate DateDTO `json:"startDate"`
	EndDate   DateDTO `json:"endDate"`
}

type DateDTO struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

type IndicativeSearchResponse struct {
	Status  string     `json:"status"`
	Content ContentDTO `json:"content"`
}

type ContentDTO struct {
	Results        ResultsDTO        `json:"results"`
	SortingOptions SortingOptionsDTO `json:"sortingOptions"`
	Stats          StatsDTO          `json:"stats"`
}

type ResultsDTO struct {
	Quotes map[string]QuoteDTO `json:"quotes"`
}

type SortingOptionsDTO struct {
	Best     []SortingHintDTO `json:"best"`
	Cheapest []SortingHintDTO `json:"cheapest"`
}

type SortingHintDTO struct {
	Score   float64 `json:"score"`
	QuoteID string  `json:"quoteId"`
}

type StatsDTO struct {
	Itineraries ItineraryStatsDTO `json:"itineraries"`
}

type ItineraryStatsDTO struct {
	MinPrice PriceDTO `json:"minPrice"`
}

type QuoteDTO struct {
	MinPrice    PriceDTO      `json:"minPrice"`
	IsDirect    bool          `json:"isDirect"`
	OutboundLeg LegDTO        `json:"outboundLeg"`
	Emissions   *EmissionsDTO `json:"emissions"`
}

type PriceDTO struct {
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
}

// LegDTO describes one itinerary leg. Route is the hub chain joined with "-"
// (e.g. "FCO-MAD-BCN"); Segments may be absent for aggregate-only quotes.
type LegDTO struct {
	OriginPlaceID      string       `json:"originPlaceId"`
	DestinationPlaceID string       `json:"destinationPlaceId"`
	Route              string       `json:"route"`
	Segments           []SegmentDTO `json:"segments"`
}

type SegmentDTO struct {
	OriginPlaceID      string `json:"originPlaceId"`
	DestinationPlaceID string `json:"destinationPlaceId"`
	DurationMinutes    int    `json:"durationMinutes"`
}

type EmissionsDTO struct {
	Co2Kg float64 `json:"co2Kg"`
}
