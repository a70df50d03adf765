// Package http exposes the matching engine over a small JSON API: trip
// creation, the two matching triggers, and the read accessor.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/voyago/tripmatch/internal/application/service"
	"github.com/voyago/tripmatch/internal/domain/models"
)

// TripService is what the handlers need from the application layer.
type TripService interface {
	CreateTrip(ctx context.Context, in service.CreateTripInput) (models.TripRequest, error)
	GetTrip(ctx context.Context, id models.TripID) (models.TripRequest, error)
	DeleteTrip(ctx context.Context, id models.TripID) error
	StartMatching(ctx context.Context, id models.TripID) (models.TripRequest, error)
	Rematch(ctx context.Context, id models.TripID) (models.TripRequest, error)
}

type Server struct {
	log *zap.Logger
	svc TripService
}

func NewRouter(log *zap.Logger, svc TripService) *chi.Mux {
	s := &Server{log: log, svc: svc}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1/trips", func(r chi.Router) {
		r.Post("/", s.handleCreateTrip)
		r.Route("/{tripID}", func(r chi.Router) {
			r.Get("/", s.handleGetTrip)
			r.Delete("/", s.handleDeleteTrip)
			r.Post("/match", s.handleStartMatching)
			r.Post("/rematch", s.handleRematch)
		})
	})

	return r
}

// requestLogger writes one structured line per request.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
