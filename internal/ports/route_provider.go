package ports

import (
	"context"
	"itinerary-scoring-service/internal/domain"
)

// RouteProvider returns the travel distance and duration between two places.
// Implementations must be safe for concurrent use.
type RouteProvider interface {
	ResolveRoute(ctx context.Context, from, to, mode string) (domain.Route, error)
}
