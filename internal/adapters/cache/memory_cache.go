package cache

import (
	"context"
	"time"

	"itinerary-scoring-service/internal/domain"
	"itinerary-scoring-service/internal/ports"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an in-process Store. Entries live for the configured TTL,
// or until the process exits when the TTL is zero.
type MemoryCache struct {
	c *gocache.Cache
}

var _ Store = (*MemoryCache)(nil)

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	expiration, cleanup := gocache.NoExpiration, time.Duration(0)
	if ttl > 0 {
		expiration, cleanup = ttl, max(ttl/2, time.Minute)
	}
	return &MemoryCache{c: gocache.New(expiration, cleanup)}
}

func (m *MemoryCache) GetPlace(_ context.Context, query string) (domain.PlaceInfo, bool, error) {
	v, ok := m.c.Get(placeKey(query))
	if !ok {
		return domain.PlaceInfo{}, false, nil
	}
	return clonePlace(v.(domain.PlaceInfo)), true, nil
}

func (m *MemoryCache) PutPlace(_ context.Context, query string, info domain.PlaceInfo) error {
	m.c.Set(placeKey(query), clonePlace(info), gocache.DefaultExpiration)
	return nil
}

func (m *MemoryCache) GetRoute(_ context.Context, key ports.RouteKey) (domain.Route, bool, error) {
	v, ok := m.c.Get(routeKey(key))
	if !ok {
		return domain.Route{}, false, nil
	}
	return v.(domain.Route), true, nil
}

func (m *MemoryCache) PutRoute(_ context.Context, key ports.RouteKey, route domain.Route) error {
	m.c.Set(routeKey(key), route, gocache.DefaultExpiration)
	return nil
}

// Len reports the number of live entries.
func (m *MemoryCache) Len() int {
	return m.c.ItemCount()
}

// clonePlace detaches the rating pointer so cached values are never shared.
func clonePlace(info domain.PlaceInfo) domain.PlaceInfo {
	if info.Rating != nil {
		r := *info.Rating
		info.Rating = &r
	}
	return info
}
