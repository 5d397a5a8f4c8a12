package api

import (
	"log/slog"
	"net/http"

	"itinerary-scoring-service/internal/api/handlers"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Scorer      handlers.ItineraryScorer
	Places      handlers.PlaceResolver
	Routes      handlers.RouteResolver
	TravelMode  string
	Checks      map[string]handlers.Check
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	itineraries := &handlers.ItineraryHandler{Scorer: d.Scorer, Logger: logger}
	lookups := &handlers.LookupHandler{
		Places:      d.Places,
		Routes:      d.Routes,
		DefaultMode: d.TravelMode,
		Logger:      logger,
	}
	health := &handlers.HealthHandler{Checks: d.Checks}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(propagateRequestID)
	r.Use(requestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", health.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/itineraries/score", itineraries.Score)
		r.Get("/places", lookups.Place)
		r.Get("/routes", lookups.Route)
	})

	return r
}
