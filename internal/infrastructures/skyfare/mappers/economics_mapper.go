package mappers

import (
	"fmt"
	"strconv"
	"strings"

	derr "github.com/voyago/tripmatch/internal/domain/errors"
	"github.com/voyago/tripmatch/internal/domain/ports"
	"github.com/voyago/tripmatch/internal/infrastructures/skyfare/dto"
)

// MapEconomics extracts the provider-labelled best itinerary from an
// indicative-search response. A best reference that does not resolve within
// the quote set falls back to the aggregate minimum price alone; an empty
// quote set is ErrQuotesUnavailable.
func MapEconomics(resp dto.IndicativeSearchResponse) (ports.Economics, error) {
	quotes := resp.Content.Results.Quotes
	if len(quotes) == 0 {
		return ports.Economics{}, derr.ErrQuotesUnavailable
	}

	if quote, ok := bestQuote(resp); ok {
		if econ, ok := mapQuote(quote); ok {
			return econ, nil
		}
	}

	// Inconsistent response: the best reference dangles or the quote itself is
	// unusable. Degrade to the aggregate price rather than failing the call.
	if price, ok := parseAmount(resp.Content.Stats.Itineraries.MinPrice.Amount); ok {
		return ports.Economics{PriceAmount: &price}, nil
	}

	return ports.Economics{}, fmt.Errorf("best itinerary unresolved and no aggregate price in response")
}

func bestQuote(resp dto.IndicativeSearchResponse) (dto.QuoteDTO, bool) {
	for _, hint := range resp.Content.SortingOptions.Best {
		id := strings.TrimSpace(hint.QuoteID)
		if id == "" {
			continue
		}
		if quote, ok := resp.Content.Results.Quotes[id]; ok {
			return quote, true
		}
	}
	return dto.QuoteDTO{}, false
}

func mapQuote(quote dto.QuoteDTO) (ports.Economics, bool) {
	price, ok := parseAmount(quote.MinPrice.Amount)
	if !ok {
		return ports.Economics{}, false
	}

	econ := ports.Economics{PriceAmount: &price}

	if quote.Emissions != nil {
		co2 := quote.Emissions.Co2Kg
		econ.EmissionsKg = &co2
	}

	if stops, ok := stopCount(quote); ok {
		econ.StopCount = &stops
	}

	if duration, ok := legDuration(quote.OutboundLeg); ok {
		econ.DurationMinutes = &duration
	}

	return econ, true
}

// stopCount derives the number of stops from the leg's route markers, clamped
// to be non-negative. Direct quotes short-circuit to zero.
func stopCount(quote dto.QuoteDTO) (int, bool) {
	if quote.IsDirect {
		return 0, true
	}

	if route := strings.TrimSpace(quote.OutboundLeg.Route); route != "" {
		stops := strings.Count(route, "-") - 1
		if stops < 0 {
			stops = 0
		}
		return stops, true
	}

	if n := len(quote.OutboundLeg.Segments); n > 0 {
		return n - 1, true
	}

	return 0, false
}

// legDuration sums per-segment durations when segment detail is present.
func legDuration(leg dto.LegDTO) (int, bool) {
	if len(leg.Segments) == 0 {
		return 0, false
	}

	total := 0
	for _, seg := range leg.Segments {
		if seg.DurationMinutes <= 0 {
			return 0, false
		}
		total += seg.DurationMinutes
	}
	return total, true
}

func parseAmount(amount string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
