package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"itinerary-scoring-service/internal/config"
	"itinerary-scoring-service/internal/domain"
	"itinerary-scoring-service/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(backend string) config.Config {
	return config.Config{
		Env:              "production",
		LogLevel:         "info",
		TravelMode:       "driving",
		CacheBackend:     backend,
		MaxConcurrency:   4,
		LookupTimeout:    time.Second,
		PipelineDeadline: 5 * time.Second,
		RetryAttempts:    1,
		RetryBackoff:     10 * time.Millisecond,
		PenaltyThreshold: 0.25,
		LodgingKeywords:  domain.DefaultLodgingKeywords,
		AllowDegraded:    true,
	}
}

func TestBuildWithoutAPIKeyDegrades(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := Build(context.Background(), testConfig(config.CacheMemory), logger)
	require.NoError(t, err)
	defer a.Close()

	assert.False(t, a.Places.Available())
	require.Contains(t, a.Checks, "maps")
	assert.Error(t, a.Checks["maps"](context.Background()))

	it, err := a.Scorer.Score(context.Background(), services.ScoreRequest{
		City:  "台北",
		Stops: []domain.Stop{{Day: 1, Time: "09:00-10:00", Place: "台北101"}},
	})
	require.ErrorIs(t, err, services.ErrResolversUnavailable)
	require.NotNil(t, it)
	assert.True(t, it.Degraded)
}

func TestBuildCacheBackends(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mr := miniredis.RunT(t)

	sqliteCfg := testConfig(config.CacheSQLite)
	sqliteCfg.SQLitePath = filepath.Join(t.TempDir(), "cache.db")

	redisCfg := testConfig(config.CacheRedis)
	redisCfg.RedisAddr = mr.Addr()

	for name, cfg := range map[string]config.Config{"sqlite": sqliteCfg, "redis": redisCfg} {
		t.Run(name, func(t *testing.T) {
			a, err := Build(context.Background(), cfg, logger)
			require.NoError(t, err)

			require.Contains(t, a.Checks, "cache")
			assert.NoError(t, a.Checks["cache"](context.Background()))
			assert.NoError(t, a.Close())
		})
	}
}

func TestBuildUnreachableRedis(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig(config.CacheRedis)
	cfg.RedisAddr = addr

	_, err = Build(context.Background(), cfg, logger)
	require.Error(t, err)
	assert.False(t, errors.Is(err, services.ErrResolversUnavailable))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}
