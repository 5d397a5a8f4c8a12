package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"itinerary-scoring-service/internal/domain"
	"itinerary-scoring-service/internal/platform/obs"
	"itinerary-scoring-service/internal/ports"
)

// SQLRouteCache is a SQL-backed cache for directed route lookups.
type SQLRouteCache struct {
	DB     *sql.DB
	Driver string
	TTL    time.Duration
}

func NewSQLRouteCache(db *sql.DB, driver string, ttl time.Duration) *SQLRouteCache {
	return &SQLRouteCache{DB: db, Driver: driver, TTL: ttl}
}

func (s *SQLRouteCache) GetRoute(ctx context.Context, key ports.RouteKey) (_ domain.Route, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if s.DB == nil {
		return domain.Route{}, false, errors.New("route cache: db is nil")
	}

	if key.From == "" || key.To == "" {
		return domain.Route{}, false, errors.New("get route cache: origin and destination must not be empty")
	}

	q := rebind(s.Driver, `
	SELECT distance_meters, duration_seconds, updated_at
	FROM route_cache
	WHERE mode = ?
		AND origin = ?
		AND destination = ?;
	`)

	route := domain.Route{Mode: key.Mode}
	var updatedAt int64
	err = s.DB.QueryRowContext(ctx, q, key.Mode, key.From, key.To).Scan(&route.DistanceMeters, &route.DurationSeconds, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Route{}, false, nil
	}
	if err != nil {
		return domain.Route{}, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	if expired(updatedAt, s.TTL) {
		return domain.Route{}, false, nil
	}

	return route, true, nil
}

func (s *SQLRouteCache) PutRoute(ctx context.Context, key ports.RouteKey, route domain.Route) error {
	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	if key.From == "" || key.To == "" {
		return errors.New("insert route cache: origin and destination must not be empty")
	}

	q := rebind(s.Driver, `
	INSERT INTO route_cache (mode, origin, destination, distance_meters, duration_seconds, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (mode, origin, destination) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds,
		updated_at = EXCLUDED.updated_at;
	`)

	if _, err := s.DB.ExecContext(ctx, q, key.Mode, key.From, key.To, route.DistanceMeters, route.DurationSeconds, time.Now().Unix()); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key.String(), err)
	}

	return nil
}

// SQLStore combines the place and route tables behind one Store.
type SQLStore struct {
	*SQLPlaceCache
	*SQLRouteCache
}

var _ Store = SQLStore{}

func NewSQLStore(db *sql.DB, driver string, ttl time.Duration) SQLStore {
	return SQLStore{
		SQLPlaceCache: NewSQLPlaceCache(db, driver, ttl),
		SQLRouteCache: NewSQLRouteCache(db, driver, ttl),
	}
}
