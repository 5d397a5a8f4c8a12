package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"itinerary-scoring-service/internal/api/dto"
	"itinerary-scoring-service/internal/domain"
	"itinerary-scoring-service/internal/services"
)

const (
	maxBodyBytes = 1 << 20
	maxSections  = 200
)

// ItineraryScorer is the pipeline entry point the handlers need.
type ItineraryScorer interface {
	Score(ctx context.Context, req services.ScoreRequest) (*domain.Itinerary, error)
}

type ItineraryHandler struct {
	Scorer ItineraryScorer
	Logger *slog.Logger
}

// Score enriches and scores a draft itinerary.
//
// When no lookup service is available the unenriched itinerary is still
// returned with "degraded" set, unless the scorer refuses to degrade, in
// which case the response is 503.
func (h *ItineraryHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req dto.ScoreRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if len(req.Sections) > maxSections {
		writeError(w, r, http.StatusBadRequest, "too many sections")
		return
	}

	it, err := h.Scorer.Score(r.Context(), services.ScoreRequest{
		City:  strings.TrimSpace(req.City),
		Stops: req.ToStops(),
	})
	if err != nil && !(errors.Is(err, services.ErrResolversUnavailable) && it != nil) {
		h.Logger.ErrorContext(r.Context(), "score itinerary failed", slog.Any("err", err))
		if errors.Is(err, services.ErrResolversUnavailable) {
			writeError(w, r, http.StatusServiceUnavailable, "lookup services unavailable")
			return
		}
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.FromItinerary(it)
	if err != nil {
		res.Warning = "lookup services unavailable; itinerary returned without ratings or travel times"
	}

	writeJSON(w, r, http.StatusOK, res)
}
