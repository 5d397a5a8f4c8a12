package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"itinerary-scoring-service/internal/domain"
	"itinerary-scoring-service/internal/platform/obs"
	"itinerary-scoring-service/internal/ports"

	"golang.org/x/sync/singleflight"
)

// DefaultLookupTimeout bounds a single external lookup.
const DefaultLookupTimeout = 10 * time.Second

// PlaceResolver looks up place details through a cache.
//
// Cache errors are logged and treated as misses, and only successful lookups
// are cached. Concurrent requests for the same query share one external call.
// It is safe for concurrent use.
type PlaceResolver struct {
	provider ports.PlaceProvider
	cache    ports.PlaceCache
	timeout  time.Duration
	logger   *slog.Logger
	flight   singleflight.Group
}

func NewPlaceResolver(
	provider ports.PlaceProvider,
	cache ports.PlaceCache,
	timeout time.Duration,
	logger *slog.Logger,
) *PlaceResolver {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PlaceResolver{
		provider: provider,
		cache:    cache,
		timeout:  timeout,
		logger:   logger,
	}
}

// Available reports whether lookups can reach a provider at all.
func (r *PlaceResolver) Available() bool {
	return r != nil && r.provider != nil
}

// Resolve returns what is known about name in city.
// Failures are returned as *LookupError.
func (r *PlaceResolver) Resolve(ctx context.Context, name, city string) (_ domain.PlaceInfo, err error) {
	query := PlaceQuery(name, city)

	ctx, done := obs.Start(ctx, "places.Resolve")
	defer done(&err)

	if !r.Available() {
		return domain.PlaceInfo{}, &LookupError{Kind: KindUnavailable, Key: query, Err: ports.ErrUnavailable}
	}

	if r.cache != nil {
		info, ok, err := r.cache.GetPlace(ctx, query)
		switch {
		case err != nil:
			obs.CacheRequestsTotal.WithLabelValues("place", "error").Inc()
			r.logger.WarnContext(ctx, "place cache read failed",
				slog.String("query", query), slog.Any("err", err))
		case ok:
			obs.CacheRequestsTotal.WithLabelValues("place", "hit").Inc()
			return info, nil
		default:
			obs.CacheRequestsTotal.WithLabelValues("place", "miss").Inc()
		}
	}

	// The shared lookup outlives any one caller; fetch bounds it with the lookup timeout.
	ch := r.flight.DoChan(query, func() (any, error) {
		return r.fetch(context.WithoutCancel(ctx), query)
	})

	select {
	case <-ctx.Done():
		err := classify(query, ctx.Err())
		obs.LookupsTotal.WithLabelValues("place", string(err.Kind)).Inc()
		return domain.PlaceInfo{}, err
	case res := <-ch:
		if res.Err != nil {
			le := classify(query, res.Err)
			obs.LookupsTotal.WithLabelValues("place", string(le.Kind)).Inc()
			return domain.PlaceInfo{}, le
		}
		obs.LookupsTotal.WithLabelValues("place", "ok").Inc()
		return res.Val.(domain.PlaceInfo), nil
	}
}

func (r *PlaceResolver) fetch(ctx context.Context, query string) (domain.PlaceInfo, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	info, err := r.provider.ResolvePlace(lookupCtx, query)
	if err != nil {
		if errors.Is(lookupCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = errors.Join(err, context.DeadlineExceeded)
		}
		return domain.PlaceInfo{}, err
	}

	if r.cache != nil {
		if err := r.cache.PutPlace(ctx, query, info); err != nil {
			r.logger.WarnContext(ctx, "place cache write failed",
				slog.String("query", query), slog.Any("err", err))
		}
	}

	return info, nil
}
