package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"itinerary-scoring-service/internal/domain"
	"itinerary-scoring-service/internal/platform/obs"
)

// SQLPlaceCache is a SQL-backed cache of place lookups keyed by query text.
// It works against both Postgres (pgx) and SQLite.
type SQLPlaceCache struct {
	DB     *sql.DB
	Driver string
	TTL    time.Duration
}

func NewSQLPlaceCache(db *sql.DB, driver string, ttl time.Duration) *SQLPlaceCache {
	return &SQLPlaceCache{DB: db, Driver: driver, TTL: ttl}
}

func (s *SQLPlaceCache) GetPlace(ctx context.Context, query string) (_ domain.PlaceInfo, _ bool, err error) {
	defer obs.Time(ctx, "place.cache.Get")(&err)

	if s.DB == nil {
		return domain.PlaceInfo{}, false, errors.New("place cache: db is nil")
	}

	if strings.TrimSpace(query) == "" {
		return domain.PlaceInfo{}, false, errors.New("get place cache: query must not be empty")
	}

	q := rebind(s.Driver, `
	SELECT name, rating, rating_count, address, updated_at
	FROM place_cache
	WHERE query = ?;
	`)

	var (
		info      domain.PlaceInfo
		rating    sql.NullFloat64
		updatedAt int64
	)
	err = s.DB.QueryRowContext(ctx, q, query).Scan(&info.Name, &rating, &info.RatingCount, &info.Address, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.PlaceInfo{}, false, nil
	}
	if err != nil {
		return domain.PlaceInfo{}, false, fmt.Errorf("get place cache: query place_cache table: %w", err)
	}

	if expired(updatedAt, s.TTL) {
		return domain.PlaceInfo{}, false, nil
	}
	if rating.Valid {
		info.Rating = &rating.Float64
	}

	return info, true, nil
}

func (s *SQLPlaceCache) PutPlace(ctx context.Context, query string, info domain.PlaceInfo) error {
	if s.DB == nil {
		return errors.New("place cache: db is nil")
	}

	if strings.TrimSpace(query) == "" {
		return errors.New("insert place cache: query must not be empty")
	}

	var rating sql.NullFloat64
	if info.Rating != nil {
		rating = sql.NullFloat64{Float64: *info.Rating, Valid: true}
	}

	q := rebind(s.Driver, `
	INSERT INTO place_cache (query, name, rating, rating_count, address, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (query) DO UPDATE
	SET name = EXCLUDED.name,
		rating = EXCLUDED.rating,
		rating_count = EXCLUDED.rating_count,
		address = EXCLUDED.address,
		updated_at = EXCLUDED.updated_at;
	`)

	if _, err := s.DB.ExecContext(ctx, q, query, info.Name, rating, info.RatingCount, info.Address, time.Now().Unix()); err != nil {
		return fmt.Errorf("insert place cache query=%q: %w", query, err)
	}

	return nil
}

// expired reports whether a row written at unix time updatedAt is past ttl.
// A zero ttl never expires.
func expired(updatedAt int64, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return time.Since(time.Unix(updatedAt, 0)) > ttl
}
