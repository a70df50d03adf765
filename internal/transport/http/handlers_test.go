package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/voyago/tripmatch/internal/application/service"
	derr "github.com/voyago/tripmatch/internal/domain/errors"
	"github.com/voyago/tripmatch/internal/domain/models"
)

type tripServiceMock struct {
	createFn func(ctx context.Context, in service.CreateTripInput) (models.TripRequest, error)
	getFn    func(ctx context.Context, id models.TripID) (models.TripRequest, error)
	deleteFn func(ctx context.Context, id models.TripID) error
	matchFn  func(ctx context.Context, id models.TripID) (models.TripRequest, error)
}

func (m *tripServiceMock) CreateTrip(ctx context.Context, in service.CreateTripInput) (models.TripRequest, error) {
	return m.createFn(ctx, in)
}

func (m *tripServiceMock) GetTrip(ctx context.Context, id models.TripID) (models.TripRequest, error) {
	return m.getFn(ctx, id)
}

func (m *tripServiceMock) DeleteTrip(ctx context.Context, id models.TripID) error {
	return m.deleteFn(ctx, id)
}

func (m *tripServiceMock) StartMatching(ctx context.Context, id models.TripID) (models.TripRequest, error) {
	return m.matchFn(ctx, id)
}

func (m *tripServiceMock) Rematch(ctx context.Context, id models.TripID) (models.TripRequest, error) {
	return m.matchFn(ctx, id)
}

const testTripID = "5f0b1c36-9a3e-4a41-8a87-1f1a9a6d7c21"

func doRequest(t *testing.T, svc TripService, method, target string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	router := NewRouter(zap.NewNop(), svc)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateTrip_Created(t *testing.T) {
	svc := &tripServiceMock{
		createFn: func(_ context.Context, in service.CreateTripInput) (models.TripRequest, error) {
			require.Equal(t, "Rome", in.DepartureLocation)
			require.Equal(t, []string{"mood:relaxed"}, in.PreferenceTags)
			require.True(t, in.Dates.Valid())
			return models.TripRequest{
				ID:                testTripID,
				OwnerRef:          in.OwnerRef,
				DepartureLocation: in.DepartureLocation,
				Status:            models.StatusPending,
			}, nil
		},
	}

	body := []byte(`{
		"owner_ref": "user-1",
		"departure_location": "Rome",
		"date_start": "2026-05-01",
		"date_end": "2026-05-08",
		"preference_tags": ["mood:relaxed"]
	}`)
	rec := doRequest(t, svc, http.MethodPost, "/v1/trips/", body)

	require.Equal(t, http.StatusCreated, rec.Code)

	var trip models.TripRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trip))
	assert.Equal(t, models.TripID(testTripID), trip.ID)
	assert.Equal(t, models.StatusPending, trip.Status)
}

func TestCreateTrip_RejectsBadDates(t *testing.T) {
	svc := &tripServiceMock{
		createFn: func(_ context.Context, _ service.CreateTripInput) (models.TripRequest, error) {
			t.Fatal("service must not be called on invalid input")
			return models.TripRequest{}, nil
		},
	}

	body := []byte(`{"departure_location": "Rome", "date_start": "01/05/2026", "date_end": "2026-05-08"}`)
	rec := doRequest(t, svc, http.MethodPost, "/v1/trips/", body)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCreateTrip_RejectsMissingLocation(t *testing.T) {
	svc := &tripServiceMock{
		createFn: func(_ context.Context, _ service.CreateTripInput) (models.TripRequest, error) {
			t.Fatal("service must not be called on invalid input")
			return models.TripRequest{}, nil
		},
	}

	body := []byte(`{"departure_location": "  ", "date_start": "2026-05-01", "date_end": "2026-05-08"}`)
	rec := doRequest(t, svc, http.MethodPost, "/v1/trips/", body)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetTrip_NotFound(t *testing.T) {
	svc := &tripServiceMock{
		getFn: func(_ context.Context, _ models.TripID) (models.TripRequest, error) {
			return models.TripRequest{}, derr.ErrTripNotFound
		},
	}

	rec := doRequest(t, svc, http.MethodGet, "/v1/trips/"+testTripID, nil)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestGetTrip_InvalidID(t *testing.T) {
	svc := &tripServiceMock{
		getFn: func(_ context.Context, _ models.TripID) (models.TripRequest, error) {
			t.Fatal("service must not be called with an invalid id")
			return models.TripRequest{}, nil
		},
	}

	rec := doRequest(t, svc, http.MethodGet, "/v1/trips/not-a-uuid", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestStartMatching_ConflictOnInvalidState(t *testing.T) {
	svc := &tripServiceMock{
		matchFn: func(_ context.Context, _ models.TripID) (models.TripRequest, error) {
			return models.TripRequest{}, derr.ErrInvalidState
		},
	}

	rec := doRequest(t, svc, http.MethodPost, "/v1/trips/"+testTripID+"/match", nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStartMatching_ReturnsTerminalRecord(t *testing.T) {
	price := 120.0
	svc := &tripServiceMock{
		matchFn: func(_ context.Context, id models.TripID) (models.TripRequest, error) {
			return models.TripRequest{
				ID:           id,
				Status:       models.StatusMatched,
				DepartureHub: "FCO",
				RankedMatches: []models.DestinationMatch{
					{DestinationHub: "BCN", DisplayName: "Barcelona", PriceAmount: &price, CompositeScore: 0.8},
				},
			}, nil
		},
	}

	rec := doRequest(t, svc, http.MethodPost, "/v1/trips/"+testTripID+"/match", nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var trip models.TripRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trip))
	assert.Equal(t, models.StatusMatched, trip.Status)
	require.Len(t, trip.RankedMatches, 1)
	assert.Equal(t, "BCN", trip.RankedMatches[0].DestinationHub)
}

func TestDeleteTrip_NoContent(t *testing.T) {
	svc := &tripServiceMock{
		deleteFn: func(_ context.Context, id models.TripID) error {
			require.Equal(t, models.TripID(testTripID), id)
			return nil
		},
	}

	rec := doRequest(t, svc, http.MethodDelete, "/v1/trips/"+testTripID, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHealthz(t *testing.T) {
	rec := doRequest(t, &tripServiceMock{}, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
