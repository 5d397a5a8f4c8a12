package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"itinerary-scoring-service/internal/api/dto"
	"itinerary-scoring-service/internal/domain"
	"itinerary-scoring-service/internal/services"
)

type PlaceResolver interface {
	Resolve(ctx context.Context, name, city string) (domain.PlaceInfo, error)
}

type RouteResolver interface {
	Resolve(ctx context.Context, from, to, mode string) (domain.Route, error)
}

// LookupHandler exposes single place and route lookups, sharing the
// pipeline's caches. Useful for checking what the pipeline will see.
type LookupHandler struct {
	Places      PlaceResolver
	Routes      RouteResolver
	DefaultMode string
	Logger      *slog.Logger
}

func (h *LookupHandler) Place(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("query"))
	city := strings.TrimSpace(r.URL.Query().Get("city"))
	if name == "" {
		writeError(w, r, http.StatusBadRequest, "query is required")
		return
	}

	info, err := h.Places.Resolve(r.Context(), name, city)
	if err != nil {
		h.writeLookupError(w, r, err)
		return
	}

	res := dto.PlaceResponse{
		Query:            services.PlaceQuery(name, city),
		Name:             info.Name,
		Rating:           info.Rating,
		UserRatingsTotal: info.RatingCount,
		Address:          info.Address,
	}
	if info.Rating != nil {
		if q, ok := services.WilsonScore(*info.Rating, info.RatingCount); ok {
			res.WilsonScore = &q
		}
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *LookupHandler) Route(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := strings.TrimSpace(q.Get("from")), strings.TrimSpace(q.Get("to"))
	if from == "" || to == "" {
		writeError(w, r, http.StatusBadRequest, "from and to are required")
		return
	}

	mode := strings.TrimSpace(q.Get("mode"))
	if mode == "" {
		mode = h.DefaultMode
	}
	if city := strings.TrimSpace(q.Get("city")); city != "" {
		from, to = services.PlaceQuery(from, city), services.PlaceQuery(to, city)
	}

	route, err := h.Routes.Resolve(r.Context(), from, to, mode)
	if err != nil {
		h.writeLookupError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.RouteResponse{
		From:            from,
		To:              to,
		Mode:            route.Mode,
		Distance:        domain.FormatDistance(route.DistanceMeters),
		Duration:        domain.FormatDuration(route.DurationMinutes()),
		DistanceMeters:  route.DistanceMeters,
		DurationSeconds: route.DurationSeconds,
	})
}

func (h *LookupHandler) writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	var le *services.LookupError
	if !errors.As(err, &le) {
		h.Logger.ErrorContext(r.Context(), "lookup failed", slog.Any("err", err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	switch le.Kind {
	case services.KindNotFound:
		writeError(w, r, http.StatusNotFound, "no result")
	case services.KindUnavailable:
		writeError(w, r, http.StatusServiceUnavailable, "lookup services unavailable")
	case services.KindTimeout:
		writeError(w, r, http.StatusGatewayTimeout, "lookup timed out")
	default:
		h.Logger.WarnContext(r.Context(), "lookup failed", slog.Any("err", err))
		writeError(w, r, http.StatusBadGateway, "lookup failed")
	}
}
