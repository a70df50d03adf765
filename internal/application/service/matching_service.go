package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	derr "github.com/voyago/tripmatch/internal/domain/errors"
	"github.com/voyago/tripmatch/internal/domain/models"
	"github.com/voyago/tripmatch/internal/domain/ports"
	"github.com/voyago/tripmatch/internal/domain/scoring"
)

const (
	defaultMaxInFlight = 8
	defaultCallTimeout = 10 * time.Second
)

// MatchingService owns the TripRequest state machine. Status and ranked
// matches are only ever written through the store's guarded transitions, so a
// pass that loses its claim (delete, supersede) drops its results on the floor.
type MatchingService struct {
	log         *zap.Logger
	store       ports.TripStore
	directory   ports.HubDirectory
	fares       ports.FareQuoteSource
	candidates  ports.CandidateSource
	events      ports.EventPublisher
	weights     scoring.Weights
	maxInFlight int
	callTimeout time.Duration
}

func NewMatchingService(
	log *zap.Logger,
	store ports.TripStore,
	directory ports.HubDirectory,
	fares ports.FareQuoteSource,
	candidates ports.CandidateSource,
	events ports.EventPublisher,
	maxInFlight int,
	callTimeout time.Duration,
) *MatchingService {
	if log == nil {
		log = zap.NewNop()
	}
	if maxInFlight <= 0 {
		maxInFlight = defaultMaxInFlight
	}
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}

	return &MatchingService{
		log:         log,
		store:       store,
		directory:   directory,
		fares:       fares,
		candidates:  candidates,
		events:      events,
		weights:     scoring.DefaultWeights(),
		maxInFlight: maxInFlight,
		callTimeout: callTimeout,
	}
}

type CreateTripInput struct {
	OwnerRef          string
	DepartureLocation string
	Dates             models.DateRange
	PreferenceTags    []string
}

func (s *MatchingService) CreateTrip(ctx context.Context, in CreateTripInput) (models.TripRequest, error) {
	const op = "service.CreateTrip"

	if strings.TrimSpace(in.DepartureLocation) == "" {
		return models.TripRequest{}, fmt.Errorf("%s: departure location is empty: %w", op, derr.ErrLocationNotFound)
	}
	if !in.Dates.Valid() {
		return models.TripRequest{}, fmt.Errorf("%s: %w", op, derr.ErrInvalidDateRange)
	}

	now := time.Now().UTC()
	trip := models.TripRequest{
		ID:                models.TripID(uuid.NewString()),
		OwnerRef:          strings.TrimSpace(in.OwnerRef),
		DepartureLocation: strings.TrimSpace(in.DepartureLocation),
		Dates:             in.Dates,
		PreferenceTags:    in.PreferenceTags,
		Status:            models.StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.store.Create(ctx, trip); err != nil {
		return models.TripRequest{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("trip request created",
		zap.String("op", op),
		zap.String("trip_id", string(trip.ID)),
		zap.String("departure", trip.DepartureLocation),
	)
	return trip, nil
}

func (s *MatchingService) GetTrip(ctx context.Context, id models.TripID) (models.TripRequest, error) {
	const op = "service.GetTrip"

	trip, err := s.store.GetByID(ctx, id)
	if err != nil {
		return models.TripRequest{}, fmt.Errorf("%s: %w", op, err)
	}
	return trip, nil
}

func (s *MatchingService) DeleteTrip(ctx context.Context, id models.TripID) error {
	const op = "service.DeleteTrip"

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("trip request deleted", zap.String("op", op), zap.String("trip_id", string(id)))
	return nil
}

// StartMatching claims pending→matching and runs one full pass, returning the
// terminal record. A concurrent second trigger loses the conditional claim and
// gets ErrInvalidState; batch-level failures land in the record as
// status=error, not in the returned error.
func (s *MatchingService) StartMatching(ctx context.Context, id models.TripID) (models.TripRequest, error) {
	const op = "service.StartMatching"

	trip, err := s.store.GetByID(ctx, id)
	if err != nil {
		return models.TripRequest{}, fmt.Errorf("%s: %w", op, err)
	}

	if trip.Status != models.StatusPending {
		return models.TripRequest{}, fmt.Errorf("%s: status is %s: %w", op, trip.Status, derr.ErrInvalidState)
	}

	if err := s.store.TransitionStatus(ctx, id, models.StatusPending, models.StatusMatching); err != nil {
		if errors.Is(err, derr.ErrStatusConflict) {
			return models.TripRequest{}, fmt.Errorf("%s: matching already claimed: %w", op, derr.ErrInvalidState)
		}
		return models.TripRequest{}, fmt.Errorf("%s: %w", op, err)
	}

	return s.runPass(ctx, trip)
}

// Rematch re-enters matching from a terminal state. The claim clears the
// previous ranked matches and error detail, so the pass runs against a clean
// record independent of prior results.
func (s *MatchingService) Rematch(ctx context.Context, id models.TripID) (models.TripRequest, error) {
	const op = "service.Rematch"

	trip, err := s.store.GetByID(ctx, id)
	if err != nil {
		return models.TripRequest{}, fmt.Errorf("%s: %w", op, err)
	}

	if !trip.Status.Terminal() {
		return models.TripRequest{}, fmt.Errorf("%s: status is %s: %w", op, trip.Status, derr.ErrInvalidState)
	}

	if err := s.store.TransitionStatus(ctx, id, trip.Status, models.StatusMatching); err != nil {
		if errors.Is(err, derr.ErrStatusConflict) {
			return models.TripRequest{}, fmt.Errorf("%s: matching already claimed: %w", op, derr.ErrInvalidState)
		}
		return models.TripRequest{}, fmt.Errorf("%s: %w", op, err)
	}

	trip.RankedMatches = nil
	trip.ErrorDetail = ""
	return s.runPass(ctx, trip)
}

func (s *MatchingService) runPass(ctx context.Context, trip models.TripRequest) (models.TripRequest, error) {
	const op = "service.runPass"

	tracer := otel.Tracer("tripmatch/service")
	ctx, span := tracer.Start(ctx, op)
	defer span.End()
	span.SetAttributes(attribute.String("trip.id", string(trip.ID)))

	logger := s.log.With(zap.String("op", op), zap.String("trip_id", string(trip.ID)))

	outcome := s.executePass(ctx, trip, logger)

	// The final write must survive a client disconnect; the store's
	// status='matching' guard still rejects it if the record was deleted or
	// superseded while fetches drained.
	persistCtx := context.WithoutCancel(ctx)
	if err := s.store.CompleteMatching(persistCtx, trip.ID, outcome); err != nil {
		if errors.Is(err, derr.ErrStatusConflict) {
			logger.Warn("trip no longer matching, dropping pass results")
			span.SetStatus(otelcodes.Error, "pass result dropped")
			// A lost guard means deleted or superseded; the caller should see
			// not-found for the former, conflict for the latter.
			if _, getErr := s.store.GetByID(persistCtx, trip.ID); errors.Is(getErr, derr.ErrTripNotFound) {
				return models.TripRequest{}, fmt.Errorf("%s: %w", op, derr.ErrTripNotFound)
			}
			return models.TripRequest{}, fmt.Errorf("%s: %w", op, err)
		}
		logger.Error("failed to persist matching outcome", zap.Error(err))
		return models.TripRequest{}, fmt.Errorf("%s: %w", op, err)
	}

	if s.events != nil {
		event := ports.MatchEvent{
			TripID:     trip.ID,
			Status:     outcome.Status,
			MatchCount: len(outcome.Matches),
			OccurredAt: time.Now().UTC(),
		}
		if err := s.events.PublishMatchCompleted(persistCtx, event); err != nil {
			logger.Warn("failed to publish match event", zap.Error(err))
		}
	}

	if outcome.Status == models.StatusError {
		span.SetStatus(otelcodes.Error, outcome.ErrorDetail)
		logger.Info("matching pass ended in error", zap.String("error_detail", outcome.ErrorDetail))
	} else {
		span.SetAttributes(attribute.Int("trip.match_count", len(outcome.Matches)))
		span.SetStatus(otelcodes.Ok, "ok")
		logger.Info("matching pass completed", zap.Int("match_count", len(outcome.Matches)))
	}

	updated, err := s.store.GetByID(persistCtx, trip.ID)
	if err != nil {
		return models.TripRequest{}, fmt.Errorf("%s: reload trip: %w", op, err)
	}
	return updated, nil
}

// executePass runs guards, fan-out, aggregation and scoring. It always returns
// a terminal outcome: panics are contained here so the record can never be
// stranded in matching.
func (s *MatchingService) executePass(ctx context.Context, trip models.TripRequest, logger *zap.Logger) (outcome ports.MatchOutcome) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic during matching pass", zap.Any("panic", r), zap.Stack("stack"))
			outcome = errorOutcome("internal error during matching pass")
		}
	}()

	if len(trip.PreferenceTags) == 0 {
		return errorOutcome("no preference tags on request; preferences must be extracted before matching")
	}
	if !trip.Dates.Valid() {
		return errorOutcome("invalid travel date range")
	}
	if strings.TrimSpace(trip.DepartureLocation) == "" {
		return errorOutcome("departure location is empty")
	}

	originHub, err := s.directory.Resolve(trip.DepartureLocation)
	if err != nil {
		logger.Warn("departure location unresolvable", zap.String("departure", trip.DepartureLocation))
		return errorOutcome(fmt.Sprintf("unknown departure location %q", trip.DepartureLocation))
	}

	hubs, err := s.candidates.Candidates(ctx, trip)
	if err != nil {
		logger.Error("candidate source failed", zap.Error(err))
		return errorOutcome("candidate destinations could not be loaded")
	}
	hubs = normalizeCandidates(hubs, originHub)
	if len(hubs) == 0 {
		return errorOutcome("no candidate destinations to evaluate")
	}

	logger.Info("fanning out fare lookups",
		zap.String("origin_hub", originHub),
		zap.Int("candidates", len(hubs)),
	)

	results := s.fetchAll(ctx, originHub, hubs, trip.Dates, logger)
	matches := s.buildMatches(results, trip.PreferenceTags)

	return ports.MatchOutcome{
		Status:       models.StatusMatched,
		DepartureHub: originHub,
		Matches:      matches,
	}
}

type fetchResult struct {
	hub    string
	econ   ports.Economics
	detail string
}

// fetchAll issues one fare lookup per candidate under a concurrency ceiling.
// Every candidate settles (success or isolated degradation) before the slice
// is returned, sorted by hub code so the join never depends on arrival order.
func (s *MatchingService) fetchAll(ctx context.Context, originHub string, hubs []string, dates models.DateRange, logger *zap.Logger) []fetchResult {
	sem := make(chan struct{}, s.maxInFlight)
	results := make([]fetchResult, len(hubs))

	var wg sync.WaitGroup
	for i, hub := range hubs {
		wg.Add(1)
		go func(i int, hub string) {
			defer wg.Done()
			// A panic in one provider call degrades that candidate only.
			defer func() {
				if r := recover(); r != nil {
					logger.Error("panic during fare fetch", zap.String("destination_hub", hub), zap.Any("panic", r))
					results[i] = fetchResult{hub: hub, detail: "fare lookup failed"}
				}
			}()
			sem <- struct{}{}
			defer func() { <-sem }()

			callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
			defer cancel()

			econ, err := s.fares.FetchEconomics(callCtx, originHub, hub, dates)
			switch {
			case err == nil:
				results[i] = fetchResult{hub: hub, econ: econ}
			case errors.Is(err, derr.ErrQuotesUnavailable):
				results[i] = fetchResult{hub: hub, detail: "no fares available for the requested dates"}
			default:
				logger.Warn("fare fetch failed", zap.String("destination_hub", hub), zap.Error(err))
				results[i] = fetchResult{hub: hub, detail: "fare lookup failed"}
			}
		}(i, hub)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].hub < results[j].hub })
	return results
}

// buildMatches scores every candidate with usable economics and appends the
// degraded ones after, ordered by hub code, so the ranked list stays a
// complete account of the pass.
func (s *MatchingService) buildMatches(results []fetchResult, preferenceTags []string) []models.DestinationMatch {
	byHub := make(map[string]fetchResult, len(results))
	scoreable := make([]scoring.Candidate, 0, len(results))
	degraded := make([]fetchResult, 0)

	for _, res := range results {
		byHub[res.hub] = res
		if res.econ.HasAny() {
			scoreable = append(scoreable, scoring.Candidate{
				Hub:  res.hub,
				Econ: res.econ,
				Tags: s.directory.Tags(res.hub),
			})
		} else {
			degraded = append(degraded, res)
		}
	}

	matches := make([]models.DestinationMatch, 0, len(results))

	for _, sc := range scoring.Rank(scoreable, preferenceTags, s.weights) {
		res := byHub[sc.Hub]
		m := s.newMatch(res)
		m.CompositeScore = sc.Score
		if res.detail == "" && !res.econ.Complete() {
			m.ErrorDetail = "partial fare data"
		}
		matches = append(matches, m)
	}

	for _, res := range degraded {
		matches = append(matches, s.newMatch(res))
	}

	return matches
}

func (s *MatchingService) newMatch(res fetchResult) models.DestinationMatch {
	displayName, _ := s.directory.DisplayName(res.hub)
	return models.DestinationMatch{
		DestinationHub:  res.hub,
		DisplayName:     displayName,
		PriceAmount:     res.econ.PriceAmount,
		EmissionsKg:     res.econ.EmissionsKg,
		StopCount:       res.econ.StopCount,
		DurationMinutes: res.econ.DurationMinutes,
		ErrorDetail:     res.detail,
	}
}

func normalizeCandidates(hubs []string, originHub string) []string {
	seen := make(map[string]struct{}, len(hubs))
	out := make([]string, 0, len(hubs))
	for _, hub := range hubs {
		code := strings.ToUpper(strings.TrimSpace(hub))
		if code == "" || code == originHub {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

func errorOutcome(detail string) ports.MatchOutcome {
	return ports.MatchOutcome{
		Status:      models.StatusError,
		ErrorDetail: detail,
	}
}
