package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	derr "github.com/voyago/tripmatch/internal/domain/errors"
	"github.com/voyago/tripmatch/internal/domain/models"
	"github.com/voyago/tripmatch/internal/domain/ports"
)

type Repository struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Repository, error) {
	poolCfg, err := buildPoolConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Repository{db: pool}, nil
}

func buildPoolConfig(dsn string) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx pool config: %w", err)
	}
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	poolCfg.ConnConfig.StatementCacheCapacity = 0
	poolCfg.ConnConfig.DescriptionCacheCapacity = 0

	return poolCfg, nil
}

func (r *Repository) Close() {
	r.db.Close()
}

func (r *Repository) Create(ctx context.Context, trip models.TripRequest) error {
	const query = `
		INSERT INTO trip_requests (
			id,
			owner_ref,
			departure_location,
			departure_hub,
			date_start,
			date_end,
			preference_tags,
			status,
			created_at,
			updated_at
		)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, now(), now())
	`

	_, err := r.db.Exec(ctx, query,
		string(trip.ID),
		trip.OwnerRef,
		trip.DepartureLocation,
		trip.DepartureHub,
		trip.Dates.Start,
		trip.Dates.End,
		trip.PreferenceTags,
		string(trip.Status),
	)
	if err != nil {
		return fmt.Errorf("insert trip request: %w", err)
	}

	return nil
}

func (r *Repository) GetByID(ctx context.Context, id models.TripID) (models.TripRequest, error) {
	const query = `
		SELECT
			id,
			owner_ref,
			departure_location,
			COALESCE(departure_hub, ''),
			date_start,
			date_end,
			preference_tags,
			status,
			ranked_matches,
			COALESCE(error_detail, ''),
			created_at,
			updated_at
		FROM trip_requests
		WHERE id = $1
	`

	var (
		trip       models.TripRequest
		storedID   string
		status     string
		rankedJSON []byte
	)

	err := r.db.QueryRow(ctx, query, string(id)).Scan(
		&storedID,
		&trip.OwnerRef,
		&trip.DepartureLocation,
		&trip.DepartureHub,
		&trip.Dates.Start,
		&trip.Dates.End,
		&trip.PreferenceTags,
		&status,
		&rankedJSON,
		&trip.ErrorDetail,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TripRequest{}, derr.ErrTripNotFound
		}
		return models.TripRequest{}, fmt.Errorf("query trip request by id: %w", err)
	}

	trip.ID = models.TripID(storedID)
	trip.Status = models.TripStatus(status)

	matches, err := unmarshalMatches(rankedJSON)
	if err != nil {
		return models.TripRequest{}, fmt.Errorf("decode ranked matches for %s: %w", storedID, err)
	}
	trip.RankedMatches = matches

	return trip, nil
}

func (r *Repository) Delete(ctx context.Context, id models.TripID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM trip_requests WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("delete trip request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return derr.ErrTripNotFound
	}
	return nil
}

func (r *Repository) TransitionStatus(ctx context.Context, id models.TripID, expected, next models.TripStatus) error {
	// Entering matching also wipes the previous outcome, so a rematch starts
	// from a clean record in the same conditional write.
	query := `
		UPDATE trip_requests
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`
	if next == models.StatusMatching {
		query = `
			UPDATE trip_requests
			SET status = $3, ranked_matches = NULL, error_detail = NULL, updated_at = now()
			WHERE id = $1 AND status = $2
		`
	}

	tag, err := r.db.Exec(ctx, query, string(id), string(expected), string(next))
	if err != nil {
		return fmt.Errorf("transition trip status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return derr.ErrStatusConflict
	}

	return nil
}

func (r *Repository) CompleteMatching(ctx context.Context, id models.TripID, outcome ports.MatchOutcome) error {
	rankedJSON, err := marshalMatches(outcome.Matches)
	if err != nil {
		return fmt.Errorf("encode ranked matches: %w", err)
	}

	const query = `
		UPDATE trip_requests
		SET status = $2,
		    departure_hub = COALESCE(NULLIF($3, ''), departure_hub),
		    ranked_matches = $4,
		    error_detail = NULLIF($5, ''),
		    updated_at = now()
		WHERE id = $1 AND status = 'matching'
	`

	tag, err := r.db.Exec(ctx, query,
		string(id),
		string(outcome.Status),
		outcome.DepartureHub,
		rankedJSON,
		outcome.ErrorDetail,
	)
	if err != nil {
		return fmt.Errorf("complete matching: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return derr.ErrStatusConflict
	}

	return nil
}

func marshalMatches(matches []models.DestinationMatch) ([]byte, error) {
	if matches == nil {
		matches = []models.DestinationMatch{}
	}
	return json.Marshal(matches)
}

func unmarshalMatches(data []byte) ([]models.DestinationMatch, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var matches []models.DestinationMatch
	if err := json.Unmarshal(data, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}
