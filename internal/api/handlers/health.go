package handlers

import (
	"context"
	"net/http"
	"time"
)

// Check tests one dependency. A nil error means healthy.
type Check func(ctx context.Context) error

// HealthHandler reports liveness plus the state of optional dependencies.
// A failing dependency does not fail the check since the pipeline degrades
// without it; it is listed so operators can see why enrichment is missing.
type HealthHandler struct {
	Checks map[string]Check
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	deps := make(map[string]string, len(h.Checks))
	for name, check := range h.Checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = "degraded"
			continue
		}
		deps[name] = "ok"
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":       status,
		"dependencies": deps,
	})
}
