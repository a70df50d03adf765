package skyfare

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	derr "github.com/voyago/tripmatch/internal/domain/errors"
	"github.com/voyago/tripmatch/internal/domain/models"
	"github.com/voyago/tripmatch/internal/infrastructures/skyfare/dto"
)

func testDates() models.DateRange {
	return models.DateRange{
		Start: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC),
	}
}

func TestFetchEconomics_BuildsAuthenticatedRequest(t *testing.T) {
	var gotKey string
	var gotReq dto.IndicativeSearchRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{
			"content": {
				"results": {"quotes": {"q1": {"minPrice": {"amount": "120"}, "isDirect": true, "outboundLeg": {"segments": [{"durationMinutes": 110}]}}}},
				"sortingOptions": {"best": [{"quoteId": "q1"}]}
			}
		}`))
	}))
	defer srv.Close()

	c := NewClient(Config{
		BaseURL:       srv.URL,
		APIKey:        "secret",
		Market:        "IT",
		Locale:        "en-GB",
		Currency:      "EUR",
		Adults:        1,
		Timeout:       time.Second,
		RatePerSecond: 100,
	})
	econ, err := c.FetchEconomics(context.Background(), "fco", "bcn", testDates())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotKey != "secret" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}

	if len(gotReq.Query.QueryLegs) != 1 {
		t.Fatalf("expected one query leg, got %d", len(gotReq.Query.QueryLegs))
	}
	leg := gotReq.Query.QueryLegs[0]
	if leg.OriginPlace.IATA != "FCO" || leg.DestinationPlace.IATA != "BCN" {
		t.Fatalf("unexpected leg places: %+v", leg)
	}
	if leg.DateRange.StartDate.Day != 1 || leg.DateRange.EndDate.Day != 8 {
		t.Fatalf("unexpected leg dates: %+v", leg.DateRange)
	}
	if gotReq.Query.Market != "IT" || gotReq.Query.Currency != "EUR" || gotReq.Query.Adults != 1 {
		t.Fatalf("unexpected query envelope: %+v", gotReq.Query)
	}

	if econ.PriceAmount == nil || *econ.PriceAmount != 120 {
		t.Fatalf("unexpected price: %v", econ.PriceAmount)
	}
	if econ.StopCount == nil || *econ.StopCount != 0 {
		t.Fatalf("unexpected stop count: %v", econ.StopCount)
	}
	if econ.DurationMinutes == nil || *econ.DurationMinutes != 110 {
		t.Fatalf("unexpected duration: %v", econ.DurationMinutes)
	}
}

func TestFetchEconomics_NoQuotesIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content": {"results": {"quotes": {}}}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "secret", Timeout: time.Second, RatePerSecond: 100})
	_, err := c.FetchEconomics(context.Background(), "FCO", "BCN", testDates())
	if !errors.Is(err, derr.ErrQuotesUnavailable) {
		t.Fatalf("expected ErrQuotesUnavailable, got %v", err)
	}
}

func TestFetchEconomics_ServerErrorFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "secret", Timeout: time.Second, RatePerSecond: 100})
	if _, err := c.FetchEconomics(context.Background(), "FCO", "BCN", testDates()); err == nil {
		t.Fatal("expected error on 502")
	}
}

func TestFetchEconomics_MalformedPayloadFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content": `))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "secret", Timeout: time.Second, RatePerSecond: 100})
	if _, err := c.FetchEconomics(context.Background(), "FCO", "BCN", testDates()); err == nil {
		t.Fatal("expected error on malformed payload")
	}
}

func TestNewClient_ZeroConfigTakesDefaults(t *testing.T) {
	c := NewClient(Config{APIKey: " secret "})

	if c.baseURL != "https://partners.api.skyfare.net" {
		t.Fatalf("unexpected base url: %s", c.baseURL)
	}
	if c.apiKey != "secret" {
		t.Fatalf("expected trimmed api key, got %q", c.apiKey)
	}
	if c.market != "IT" || c.locale != "en-GB" || c.currency != "EUR" {
		t.Fatalf("unexpected defaults: market=%s locale=%s currency=%s", c.market, c.locale, c.currency)
	}
	if c.cabinClass != "CABIN_CLASS_ECONOMY" || c.adults != 1 {
		t.Fatalf("unexpected defaults: cabin=%s adults=%d", c.cabinClass, c.adults)
	}
	if c.httpClient.Timeout != 5*time.Second {
		t.Fatalf("unexpected default timeout: %s", c.httpClient.Timeout)
	}
}

func TestFetchEconomics_EmptyAPIKeyFailsFast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected without an api key")
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second, RatePerSecond: 100})
	if _, err := c.FetchEconomics(context.Background(), "FCO", "BCN", testDates()); err == nil {
		t.Fatal("expected error with empty api key")
	}
}
