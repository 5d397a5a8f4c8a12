package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"itinerary-scoring-service/internal/domain"
	"itinerary-scoring-service/internal/platform/obs"
	"itinerary-scoring-service/internal/ports"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxConcurrency   = 8
	DefaultPipelineDeadline = 4 * time.Minute
)

// ScorerConfig tunes a Scorer. Zero values fall back to the defaults.
type ScorerConfig struct {
	MaxConcurrency   int
	PipelineDeadline time.Duration
	PenaltyThreshold float64
	TravelMode       string
	// AllowDegraded returns the unenriched itinerary alongside
	// ErrResolversUnavailable instead of no itinerary at all.
	AllowDegraded bool
}

// ScoreRequest is a draft itinerary for one city.
type ScoreRequest struct {
	City  string
	Stops []domain.Stop
}

// Scorer enriches a draft itinerary with place and route lookups and scores it.
//
// Lookups fan out with bounded concurrency. A failed lookup only leaves the
// affected stop or leg unannotated; Score itself fails only when no lookup
// service is available.
type Scorer struct {
	places  *PlaceResolver
	routes  *RouteResolver
	lodging *domain.LodgingClassifier
	cfg     ScorerConfig
	logger  *slog.Logger
}

func NewScorer(
	places *PlaceResolver,
	routes *RouteResolver,
	lodging *domain.LodgingClassifier,
	cfg ScorerConfig,
	logger *slog.Logger,
) *Scorer {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultMaxConcurrency
	}
	if cfg.PipelineDeadline <= 0 {
		cfg.PipelineDeadline = DefaultPipelineDeadline
	}
	if cfg.PenaltyThreshold <= 0 || cfg.PenaltyThreshold >= 1 {
		cfg.PenaltyThreshold = DefaultPenaltyThreshold
	}
	if cfg.TravelMode == "" {
		cfg.TravelMode = DefaultTravelMode
	}
	if lodging == nil {
		lodging = domain.NewLodgingClassifier(domain.DefaultLodgingKeywords)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Scorer{
		places:  places,
		routes:  routes,
		lodging: lodging,
		cfg:     cfg,
		logger:  logger,
	}
}

// Score runs the pipeline for req.
//
// Lookups still outstanding when the pipeline deadline passes are abandoned
// and the itinerary is assembled from whatever resolved in time.
func (s *Scorer) Score(ctx context.Context, req ScoreRequest) (_ *domain.Itinerary, err error) {
	ctx, done := obs.Start(ctx, "itinerary.Score")
	defer done(&err)

	stops := NormalizeStops(req.Stops)
	obs.SpanFromContext(ctx).SetAttributes(
		attribute.String("city", req.City),
		attribute.Int("stops", len(stops)),
	)

	log := s.logger.With(slog.String("req_id", obs.RequestID(ctx)), slog.String("city", req.City))

	if len(stops) == 0 {
		obs.ItinerariesScored.WithLabelValues("ok").Inc()
		return s.assemble(req.City, nil, nil, nil), nil
	}

	if !s.places.Available() || !s.routes.Available() {
		log.ErrorContext(ctx, "lookup services unavailable, skipping enrichment",
			slog.Int("stops", len(stops)))

		err := fmt.Errorf("score itinerary: %w", ErrResolversUnavailable)
		if !s.cfg.AllowDegraded {
			obs.ItinerariesScored.WithLabelValues("failed").Inc()
			return nil, err
		}

		obs.ItinerariesScored.WithLabelValues("degraded").Inc()
		it := s.assemble(req.City, stops, nil, nil)
		it.Degraded = true
		return it, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.PipelineDeadline)
	defer cancel()

	places := s.resolvePlaces(ctx, log, req.City, stops)
	legs := PlanLegs(stops, s.lodging.IsLodging)
	routes := s.resolveRoutes(ctx, log, req.City, legs)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		log.WarnContext(ctx, "pipeline deadline reached, returning partial itinerary",
			slog.Duration("deadline", s.cfg.PipelineDeadline))
	}

	it := s.assemble(req.City, stops, places, s.attachLegs(legs, routes))
	obs.ItinerariesScored.WithLabelValues("ok").Inc()

	log.InfoContext(ctx, "itinerary scored",
		slog.Int("stops", len(it.Stops)),
		slog.Int("places_resolved", len(places)),
		slog.Int("legs_resolved", len(routes)),
		slog.Int("travel_minutes", it.TotalDurationMinutes),
		slog.Int("playing_minutes", it.PlayingTimeMinutes),
	)

	return it, nil
}

// resolvePlaces looks up each distinct place once. Failed lookups are
// logged and absent from the result.
func (s *Scorer) resolvePlaces(
	ctx context.Context,
	log *slog.Logger,
	city string,
	stops []domain.Stop,
) map[string]domain.PlaceInfo {
	seen := make(map[string]struct{})
	var names []string
	for _, st := range stops {
		if !isLookupable(st.Place) {
			continue
		}
		if _, ok := seen[st.Place]; ok {
			continue
		}
		seen[st.Place] = struct{}{}
		names = append(names, st.Place)
	}

	var mu sync.Mutex
	out := make(map[string]domain.PlaceInfo, len(names))

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.MaxConcurrency)

	for _, name := range names {
		g.Go(func() error {
			info, err := s.places.Resolve(ctx, name, city)
			if err != nil {
				log.WarnContext(ctx, "place lookup failed",
					slog.String("place", name), slog.Any("err", err))
				return nil
			}

			mu.Lock()
			out[name] = info
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// resolveRoutes looks up each distinct directed pair once. A leg whose ends
// name the same place resolves to an empty route without a lookup.
func (s *Scorer) resolveRoutes(
	ctx context.Context,
	log *slog.Logger,
	city string,
	legs []LegPlan,
) map[ports.RouteKey]domain.Route {
	mode := s.cfg.TravelMode

	var mu sync.Mutex
	out := make(map[ports.RouteKey]domain.Route, len(legs))
	seen := make(map[ports.RouteKey]struct{}, len(legs))

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.MaxConcurrency)

	for _, leg := range legs {
		key := ports.RouteKey{Mode: mode, From: leg.FromPlace, To: leg.ToPlace}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		if leg.FromPlace == leg.ToPlace {
			out[key] = domain.Route{Mode: mode}
			continue
		}

		g.Go(func() error {
			from, to := PlaceQuery(key.From, city), PlaceQuery(key.To, city)
			route, err := s.routes.Resolve(ctx, from, to, mode)
			if err != nil {
				log.WarnContext(ctx, "route lookup failed",
					slog.String("from", key.From), slog.String("to", key.To), slog.Any("err", err))
				return nil
			}

			mu.Lock()
			out[key] = route
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// attachLegs maps resolved routes onto destination stop indices.
func (s *Scorer) attachLegs(legs []LegPlan, routes map[ports.RouteKey]domain.Route) map[int]domain.TravelLeg {
	out := make(map[int]domain.TravelLeg, len(legs))
	for _, leg := range legs {
		route, ok := routes[ports.RouteKey{Mode: s.cfg.TravelMode, From: leg.FromPlace, To: leg.ToPlace}]
		if !ok {
			continue
		}
		out[leg.To] = domain.TravelLeg{FromPlace: leg.FromPlace, ToPlace: leg.ToPlace, Route: route}
	}
	return out
}

// assemble builds the final itinerary from new values; inputs are not mutated.
func (s *Scorer) assemble(
	city string,
	stops []domain.Stop,
	places map[string]domain.PlaceInfo,
	legs map[int]domain.TravelLeg,
) *domain.Itinerary {
	enriched := make([]domain.EnrichedStop, 0, len(stops))

	var sum float64
	var scored int

	for i, st := range stops {
		es := domain.EnrichedStop{Stop: st}

		if info, ok := places[st.Place]; ok {
			es.PlaceInfo = &info
			if info.Rating != nil {
				if q, ok := WilsonScore(*info.Rating, info.RatingCount); ok {
					es.QualityScore = &q
					sum += q
					scored++
				}
			}
		}

		if leg, ok := legs[i]; ok {
			es.Leg = &leg
		}

		enriched = append(enriched, es)
	}

	totals := Aggregate(enriched)
	penalty := TravelPenalty(totals.TotalDurationMinutes, totals.PlayingMinutes, s.cfg.PenaltyThreshold)

	it := &domain.Itinerary{
		City:                 city,
		Stops:                enriched,
		DaySummaries:         totals.Days,
		TotalDistanceMeters:  totals.TotalDistanceMeters,
		TotalDurationMinutes: totals.TotalDurationMinutes,
		PlayingTimeMinutes:   totals.PlayingMinutes,
		TravelPenaltyFactor:  penalty,
	}

	if scored > 0 {
		rec := round1(sum / float64(scored) * penalty)
		it.RecommendationScore = &rec
	}

	return it
}
