// Package app assembles the scoring pipeline from configuration.
// It is shared by the HTTP server and the command-line scorer.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"itinerary-scoring-service/internal/adapters/cache"
	"itinerary-scoring-service/internal/adapters/maps"
	"itinerary-scoring-service/internal/api/handlers"
	"itinerary-scoring-service/internal/config"
	"itinerary-scoring-service/internal/domain"
	"itinerary-scoring-service/internal/platform/db"
	"itinerary-scoring-service/internal/ports"
	"itinerary-scoring-service/internal/services"

	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"
)

// App holds the wired pipeline and the resources it owns.
type App struct {
	Scorer *services.Scorer
	Places *services.PlaceResolver
	Routes *services.RouteResolver
	Checks map[string]handlers.Check

	closers []func() error
}

// NewLogger returns colored text logs in development and JSON otherwise.
func NewLogger(cfg config.Config) *slog.Logger {
	level := parseLevel(cfg.LogLevel)

	if cfg.IsDevelopment() {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level, TimeFormat: "15:04:05.000"}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Build wires caches, the maps provider, resolvers and the scorer.
//
// A missing maps API key is not an error: the resolvers report themselves
// unavailable and scoring degrades. Cache backends that cannot be reached are.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Checks: make(map[string]handlers.Check)}

	store, err := a.openStore(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	var places ports.PlaceProvider
	var routes ports.RouteProvider

	google, err := maps.NewGoogleProvider(maps.GoogleConfig{
		APIKey:        cfg.GoogleMapsAPIKey,
		BaseURL:       cfg.MapsBaseURL,
		Language:      cfg.Language,
		Region:        cfg.Region,
		RetryAttempts: cfg.RetryAttempts,
		RetryBackoff:  cfg.RetryBackoff,
	})
	switch {
	case err == nil:
		places, routes = google, google
		a.Checks["maps"] = google.Check
	case errors.Is(err, ports.ErrUnavailable):
		logger.Warn("google maps disabled, itineraries will not be enriched", slog.Any("err", err))
		a.Checks["maps"] = func(context.Context) error { return ports.ErrUnavailable }
	default:
		a.Close()
		return nil, fmt.Errorf("build maps provider: %w", err)
	}

	a.Places = services.NewPlaceResolver(places, store, cfg.LookupTimeout, logger)
	a.Routes = services.NewRouteResolver(routes, store, cfg.LookupTimeout, logger)
	a.Scorer = services.NewScorer(
		a.Places,
		a.Routes,
		domain.NewLodgingClassifier(cfg.LodgingKeywords),
		services.ScorerConfig{
			MaxConcurrency:   cfg.MaxConcurrency,
			PipelineDeadline: cfg.PipelineDeadline,
			PenaltyThreshold: cfg.PenaltyThreshold,
			TravelMode:       cfg.TravelMode,
			AllowDegraded:    cfg.AllowDegraded,
		},
		logger,
	)

	return a, nil
}

// openStore returns the configured cache. Shared backends sit behind an
// in-process L1 so repeated lookups within one instance skip the network.
func (a *App) openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (cache.Store, error) {
	memory := cache.NewMemoryCache(cfg.CacheTTL)

	var l2 cache.Store
	switch cfg.CacheBackend {
	case config.CacheMemory:
		logger.Info("using in-memory lookup cache")
		return memory, nil

	case config.CacheSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, conn.Close)
		if err := db.Migrate(ctx, conn, db.DriverSQLite); err != nil {
			return nil, err
		}
		a.Checks["cache"] = sqlCheck(conn)
		l2 = cache.NewSQLStore(conn, db.DriverSQLite, cfg.CacheTTL)
		logger.Info("using sqlite lookup cache", slog.String("path", cfg.SQLitePath))

	case config.CachePostgres:
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, conn.Close)
		if err := db.Migrate(ctx, conn, db.DriverPostgres); err != nil {
			return nil, err
		}
		a.Checks["cache"] = sqlCheck(conn)
		l2 = cache.NewSQLStore(conn, db.DriverPostgres, cfg.CacheTTL)
		logger.Info("using postgres lookup cache")

	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		a.closers = append(a.closers, client.Close)
		rc := cache.NewRedisCache(client, cfg.CacheTTL)
		if err := rc.Ping(ctx); err != nil {
			return nil, fmt.Errorf("connect redis %q: %w", cfg.RedisAddr, err)
		}
		a.Checks["cache"] = rc.Ping
		l2 = rc
		logger.Info("using redis lookup cache", slog.String("addr", cfg.RedisAddr))

	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.CacheBackend)
	}

	return cache.Tiered{L1: memory, L2: l2}, nil
}

func sqlCheck(conn *sql.DB) handlers.Check {
	return conn.PingContext
}

// Close releases database and Redis connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
