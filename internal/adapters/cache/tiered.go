package cache

import (
	"context"
	"errors"

	"itinerary-scoring-service/internal/domain"
	"itinerary-scoring-service/internal/ports"
)

// Tiered puts a fast local Store in front of a shared or persistent one.
// Reads fall through to L2 and backfill L1; writes go to both.
type Tiered struct {
	L1 Store
	L2 Store
}

var _ Store = Tiered{}

func (t Tiered) GetPlace(ctx context.Context, query string) (domain.PlaceInfo, bool, error) {
	if info, ok, err := t.L1.GetPlace(ctx, query); err == nil && ok {
		return info, true, nil
	}

	info, ok, err := t.L2.GetPlace(ctx, query)
	if err != nil || !ok {
		return domain.PlaceInfo{}, false, err
	}

	_ = t.L1.PutPlace(ctx, query, info)
	return info, true, nil
}

func (t Tiered) PutPlace(ctx context.Context, query string, info domain.PlaceInfo) error {
	return errors.Join(t.L1.PutPlace(ctx, query, info), t.L2.PutPlace(ctx, query, info))
}

func (t Tiered) GetRoute(ctx context.Context, key ports.RouteKey) (domain.Route, bool, error) {
	if route, ok, err := t.L1.GetRoute(ctx, key); err == nil && ok {
		return route, true, nil
	}

	route, ok, err := t.L2.GetRoute(ctx, key)
	if err != nil || !ok {
		return domain.Route{}, false, err
	}

	_ = t.L1.PutRoute(ctx, key, route)
	return route, true, nil
}

func (t Tiered) PutRoute(ctx context.Context, key ports.RouteKey, route domain.Route) error {
	return errors.Join(t.L1.PutRoute(ctx, key, route), t.L2.PutRoute(ctx, key, route))
}
