package ports

import (
	"context"
	"itinerary-scoring-service/internal/domain"
)

// RouteKey identifies a directed route lookup. (A, B) and (B, A) are distinct.
type RouteKey struct {
	Mode string
	From string
	To   string
}

func (k RouteKey) String() string {
	return k.Mode + "|" + k.From + "|" + k.To
}

// PlaceCache stores successful place lookups keyed by the exact query string.
// A miss is reported as ok=false with a nil error.
type PlaceCache interface {
	GetPlace(ctx context.Context, query string) (domain.PlaceInfo, bool, error)
	PutPlace(ctx context.Context, query string, info domain.PlaceInfo) error
}

// RouteCache stores successful route lookups.
type RouteCache interface {
	GetRoute(ctx context.Context, key RouteKey) (domain.Route, bool, error)
	PutRoute(ctx context.Context, key RouteKey, route domain.Route) error
}
