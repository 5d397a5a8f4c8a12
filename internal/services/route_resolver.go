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

// DefaultTravelMode is used when a caller does not name one.
const DefaultTravelMode = "driving"

// RouteResolver looks up directed routes through a cache keyed by
// (mode, from, to). It follows the same contract as PlaceResolver.
type RouteResolver struct {
	provider ports.RouteProvider
	cache    ports.RouteCache
	timeout  time.Duration
	logger   *slog.Logger
	flight   singleflight.Group
}

func NewRouteResolver(
	provider ports.RouteProvider,
	cache ports.RouteCache,
	timeout time.Duration,
	logger *slog.Logger,
) *RouteResolver {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RouteResolver{
		provider: provider,
		cache:    cache,
		timeout:  timeout,
		logger:   logger,
	}
}

// Available reports whether lookups can reach a provider at all.
func (r *RouteResolver) Available() bool {
	return r != nil && r.provider != nil
}

// Resolve returns the route from one place to another.
// Failures are returned as *LookupError.
func (r *RouteResolver) Resolve(ctx context.Context, from, to, mode string) (_ domain.Route, err error) {
	if mode == "" {
		mode = DefaultTravelMode
	}
	key := ports.RouteKey{Mode: mode, From: from, To: to}

	ctx, done := obs.Start(ctx, "routes.Resolve")
	defer done(&err)

	if !r.Available() {
		return domain.Route{}, &LookupError{Kind: KindUnavailable, Key: key.String(), Err: ports.ErrUnavailable}
	}

	if r.cache != nil {
		route, ok, err := r.cache.GetRoute(ctx, key)
		switch {
		case err != nil:
			obs.CacheRequestsTotal.WithLabelValues("route", "error").Inc()
			r.logger.WarnContext(ctx, "route cache read failed",
				slog.String("key", key.String()), slog.Any("err", err))
		case ok:
			obs.CacheRequestsTotal.WithLabelValues("route", "hit").Inc()
			return route, nil
		default:
			obs.CacheRequestsTotal.WithLabelValues("route", "miss").Inc()
		}
	}

	// The shared lookup outlives any one caller; fetch bounds it with the lookup timeout.
	ch := r.flight.DoChan(key.String(), func() (any, error) {
		return r.fetch(context.WithoutCancel(ctx), key)
	})

	select {
	case <-ctx.Done():
		err := classify(key.String(), ctx.Err())
		obs.LookupsTotal.WithLabelValues("route", string(err.Kind)).Inc()
		return domain.Route{}, err
	case res := <-ch:
		if res.Err != nil {
			le := classify(key.String(), res.Err)
			obs.LookupsTotal.WithLabelValues("route", string(le.Kind)).Inc()
			return domain.Route{}, le
		}
		obs.LookupsTotal.WithLabelValues("route", "ok").Inc()
		return res.Val.(domain.Route), nil
	}
}

func (r *RouteResolver) fetch(ctx context.Context, key ports.RouteKey) (domain.Route, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	route, err := r.provider.ResolveRoute(lookupCtx, key.From, key.To, key.Mode)
	if err != nil {
		if errors.Is(lookupCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = errors.Join(err, context.DeadlineExceeded)
		}
		return domain.Route{}, err
	}
	if route.Mode == "" {
		route.Mode = key.Mode
	}

	if r.cache != nil {
		if err := r.cache.PutRoute(ctx, key, route); err != nil {
			r.logger.WarnContext(ctx, "route cache write failed",
				slog.String("key", key.String()), slog.Any("err", err))
		}
	}

	return route, nil
}
