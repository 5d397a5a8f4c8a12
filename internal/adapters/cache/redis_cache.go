package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"itinerary-scoring-service/internal/domain"
	"itinerary-scoring-service/internal/platform/obs"
	"itinerary-scoring-service/internal/ports"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Store shared by every service instance using the same
// Redis. Values are JSON; a zero TTL stores them without expiry.
type RedisCache struct {
	client    redis.UniversalClient
	ttl       time.Duration
	namespace string
}

var _ Store = (*RedisCache)(nil)

func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, namespace: "itinerary:"}
}

type redisPlace struct {
	Name        string   `json:"name"`
	Rating      *float64 `json:"rating,omitempty"`
	RatingCount int      `json:"ratingCount"`
	Address     string   `json:"address"`
}

type redisRoute struct {
	DistanceMeters  int    `json:"distanceMeters"`
	DurationSeconds int    `json:"durationSeconds"`
	Mode            string `json:"mode"`
}

func (r *RedisCache) GetPlace(ctx context.Context, query string) (_ domain.PlaceInfo, _ bool, err error) {
	defer obs.Time(ctx, "place.redis.Get")(&err)

	var v redisPlace
	ok, err := r.get(ctx, placeKey(query), &v)
	if err != nil || !ok {
		return domain.PlaceInfo{}, false, err
	}

	return domain.PlaceInfo{Name: v.Name, Rating: v.Rating, RatingCount: v.RatingCount, Address: v.Address}, true, nil
}

func (r *RedisCache) PutPlace(ctx context.Context, query string, info domain.PlaceInfo) error {
	return r.set(ctx, placeKey(query), redisPlace{
		Name:        info.Name,
		Rating:      info.Rating,
		RatingCount: info.RatingCount,
		Address:     info.Address,
	})
}

func (r *RedisCache) GetRoute(ctx context.Context, key ports.RouteKey) (_ domain.Route, _ bool, err error) {
	defer obs.Time(ctx, "route.redis.Get")(&err)

	var v redisRoute
	ok, err := r.get(ctx, routeKey(key), &v)
	if err != nil || !ok {
		return domain.Route{}, false, err
	}

	return domain.Route{DistanceMeters: v.DistanceMeters, DurationSeconds: v.DurationSeconds, Mode: v.Mode}, true, nil
}

func (r *RedisCache) PutRoute(ctx context.Context, key ports.RouteKey, route domain.Route) error {
	return r.set(ctx, routeKey(key), redisRoute{
		DistanceMeters:  route.DistanceMeters,
		DurationSeconds: route.DurationSeconds,
		Mode:            route.Mode,
	})
}

// Ping checks the connection.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) get(ctx context.Context, key string, out any) (bool, error) {
	b, err := r.client.Get(ctx, r.namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %q: %w", key, err)
	}

	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("redis decode %q: %w", key, err)
	}
	return true, nil
}

func (r *RedisCache) set(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis encode %q: %w", key, err)
	}

	if err := r.client.Set(ctx, r.namespace+key, b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}
