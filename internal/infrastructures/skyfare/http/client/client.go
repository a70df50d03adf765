// Package skyfare talks to the Skyfare indicative-pricing API. Prices are
// non-binding estimates and time-sensitive, so the client never caches: every
// call hits the provider.
package skyfare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/voyago/tripmatch/internal/domain/models"
	"github.com/voyago/tripmatch/internal/domain/ports"
	"github.com/voyago/tripmatch/internal/infrastructures/skyfare/dto"
	"github.com/voyago/tripmatch/internal/infrastructures/skyfare/mappers"
)

const searchPath = "/v3/flights/indicative/search"

// Config carries the provider settings; zero values fall back to sane
// defaults so only the API key is strictly required.
type Config struct {
	BaseURL       string
	APIKey        string
	Market        string
	Locale        string
	Currency      string
	CabinClass    string
	Adults        int
	Timeout       time.Duration
	RatePerSecond float64
}

type Client struct {
	baseURL    string
	apiKey     string
	market     string
	locale     string
	currency   string
	cabinClass string
	adults     int
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg Config) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://partners.api.skyfare.net"
	}
	if strings.TrimSpace(cfg.Market) == "" {
		cfg.Market = "IT"
	}
	if strings.TrimSpace(cfg.Locale) == "" {
		cfg.Locale = "en-GB"
	}
	if strings.TrimSpace(cfg.Currency) == "" {
		cfg.Currency = "EUR"
	}
	if strings.TrimSpace(cfg.CabinClass) == "" {
		cfg.CabinClass = "CABIN_CLASS_ECONOMY"
	}
	if cfg.Adults <= 0 {
		cfg.Adults = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = 8
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		market:     strings.ToUpper(strings.TrimSpace(cfg.Market)),
		locale:     strings.TrimSpace(cfg.Locale),
		currency:   strings.ToUpper(strings.TrimSpace(cfg.Currency)),
		cabinClass: strings.TrimSpace(cfg.CabinClass),
		adults:     cfg.Adults,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1),
	}
}

func (c *Client) FetchEconomics(ctx context.Context, originHub, destinationHub string, dates models.DateRange) (ports.Economics, error) {
	if c.apiKey == "" {
		return ports.Economics{}, fmt.Errorf("skyfare api key is empty")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return ports.Economics{}, fmt.Errorf("skyfare rate limiter: %w", err)
	}

	body, err := json.Marshal(c.buildRequest(originHub, destinationHub, dates))
	if err != nil {
		return ports.Economics{}, fmt.Errorf("encode skyfare request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return ports.Economics{}, fmt.Errorf("build skyfare request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ports.Economics{}, fmt.Errorf("skyfare request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return ports.Economics{}, fmt.Errorf("skyfare status: %s", resp.Status)
	}

	var payload dto.IndicativeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ports.Economics{}, fmt.Errorf("decode skyfare response: %w", err)
	}

	return mappers.MapEconomics(payload)
}

func (c *Client) buildRequest(originHub, destinationHub string, dates models.DateRange) dto.IndicativeSearchRequest {
	return dto.IndicativeSearchRequest{
		Query: dto.QueryDTO{
			Market:   c.market,
			Locale:   c.locale,
			Currency: c.currency,
			QueryLegs: []dto.QueryLegDTO{
				{
					OriginPlace:      dto.PlaceDTO{IATA: strings.ToUpper(strings.TrimSpace(originHub))},
					DestinationPlace: dto.PlaceDTO{IATA: strings.ToUpper(strings.TrimSpace(destinationHub))},
					DateRange: dto.DateRangeDTO{
						StartDate: toDateDTO(dates.Start),
						EndDate:   toDateDTO(dates.End),
					},
				},
			},
			CabinClass: c.cabinClass,
			Adults:     c.adults,
		},
	}
}

func toDateDTO(t time.Time) dto.DateDTO {
	t = t.UTC()
	return dto.DateDTO{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}
