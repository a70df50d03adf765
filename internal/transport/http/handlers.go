package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voyago/tripmatch/internal/application/service"
	derr "github.com/voyago/tripmatch/internal/domain/errors"
	"github.com/voyago/tripmatch/internal/domain/models"
)

const dateLayout = "2006-01-02"

type createTripRequest struct {
	OwnerRef          string   `json:"owner_ref"`
	DepartureLocation string   `json:"departure_location"`
	DateStart         string   `json:"date_start"`
	DateEnd           string   `json:"date_end"`
	PreferenceTags    []string `json:"preference_tags"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if strings.TrimSpace(req.DepartureLocation) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "departure_location is required"})
		return
	}

	start, err := time.Parse(dateLayout, req.DateStart)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "date_start must be YYYY-MM-DD"})
		return
	}
	end, err := time.Parse(dateLayout, req.DateEnd)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "date_end must be YYYY-MM-DD"})
		return
	}

	trip, err := s.svc.CreateTrip(r.Context(), service.CreateTripInput{
		OwnerRef:          req.OwnerRef,
		DepartureLocation: req.DepartureLocation,
		Dates:             models.DateRange{Start: start, End: end},
		PreferenceTags:    req.PreferenceTags,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, trip)
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := s.tripID(w, r)
	if !ok {
		return
	}

	trip, err := s.svc.GetTrip(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, ok := s.tripID(w, r)
	if !ok {
		return
	}

	if err := s.svc.DeleteTrip(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStartMatching(w http.ResponseWriter, r *http.Request) {
	id, ok := s.tripID(w, r)
	if !ok {
		return
	}

	trip, err := s.svc.StartMatching(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) handleRematch(w http.ResponseWriter, r *http.Request) {
	id, ok := s.tripID(w, r)
	if !ok {
		return
	}

	trip, err := s.svc.Rematch(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) tripID(w http.ResponseWriter, r *http.Request) (models.TripID, bool) {
	raw := chi.URLParam(r, "tripID")
	if _, err := uuid.Parse(raw); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "trip id must be a valid uuid"})
		return "", false
	}
	return models.TripID(raw), true
}

// writeDomainError maps sentinel errors to statuses; anything unexpected is a
// 500 with a generic body, full detail stays in the logs.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, derr.ErrTripNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "trip request not found"})
	case errors.Is(err, derr.ErrInvalidState), errors.Is(err, derr.ErrStatusConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "operation not allowed in current trip state"})
	case errors.Is(err, derr.ErrInvalidDateRange):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid date range"})
	case errors.Is(err, derr.ErrLocationNotFound):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "departure location is invalid"})
	default:
		s.log.Error("unhandled service error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
