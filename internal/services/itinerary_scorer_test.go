package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"itinerary-scoring-service/internal/adapters/cache"
	"itinerary-scoring-service/internal/adapters/maps"
	"itinerary-scoring-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScorer(p *maps.MockProvider, cfg ScorerConfig) *Scorer {
	c := cache.NewMemoryCache(0)
	return NewScorer(
		NewPlaceResolver(p, c, time.Second, discardLogger),
		NewRouteResolver(p, c, time.Second, discardLogger),
		domain.NewLodgingClassifier(domain.DefaultLodgingKeywords),
		cfg,
		discardLogger,
	)
}

func taipeiProvider() *maps.MockProvider {
	return maps.NewMockProvider(
		[]maps.MockPlace{
			{Query: "台北101", Name: "台北101", Rating: 4.5, RatingCount: 2000},
			{Query: "台北 士林夜市", Name: "士林夜市", Rating: 4.2, RatingCount: 500},
			{Query: "台北 福華飯店", Name: "福華大飯店", Rating: 4.3, RatingCount: 3000},
			{Query: "台北 故宮博物院", Name: "國立故宮博物院", Rating: 4.6, RatingCount: 40000},
		},
		[]maps.MockPair{
			{From: "台北101", To: "台北 士林夜市", Meters: 3000, Seconds: 900},
			{From: "台北 士林夜市", To: "台北 福華飯店", Meters: 6000, Seconds: 1200},
			{From: "台北 福華飯店", To: "台北 故宮博物院", Meters: 8000, Seconds: 1500},
		},
	)
}

func TestScore_EndToEnd(t *testing.T) {
	p := taipeiProvider()
	s := newTestScorer(p, ScorerConfig{})

	it, err := s.Score(context.Background(), ScoreRequest{
		City: "台北",
		Stops: []domain.Stop{
			{Day: 1, Time: "09:00-12:00", Place: "台北101", Details: []string{"觀景台"}},
			{Day: 1, Time: "18:00-21:00", Place: "士林夜市", Details: []string{"小吃"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, it.Stops, 2)

	first, second := it.Stops[0], it.Stops[1]
	require.NotNil(t, first.QualityScore)
	require.NotNil(t, second.QualityScore)
	assert.Less(t, *first.QualityScore, 4.5)
	assert.Less(t, *second.QualityScore, 4.2)

	assert.Nil(t, first.Leg, "first stop of the trip has no leg")
	require.NotNil(t, second.Leg)
	assert.Equal(t, "台北101", second.Leg.FromPlace)
	assert.Equal(t, "士林夜市", second.Leg.ToPlace)
	assert.Equal(t, "driving", second.Leg.Mode)

	assert.Equal(t, "3.0 公里", domain.FormatDistance(it.TotalDistanceMeters))
	assert.Equal(t, "15 分鐘", domain.FormatDuration(it.TotalDurationMinutes))
	assert.Equal(t, 720, it.PlayingTimeMinutes)
	assert.Equal(t, 1.0, it.TravelPenaltyFactor)

	require.NotNil(t, it.RecommendationScore)
	want := round1((*first.QualityScore + *second.QualityScore) / 2 * 1.0)
	assert.Equal(t, want, *it.RecommendationScore)
	assert.False(t, it.Degraded)

	require.Len(t, it.DaySummaries, 1)
	assert.Equal(t, 15, it.DaySummaries[0].DurationMinutes)
}

func TestScore_RepeatedPlaceIsLookedUpOnce(t *testing.T) {
	p := taipeiProvider()
	s := newTestScorer(p, ScorerConfig{})

	it, err := s.Score(context.Background(), ScoreRequest{
		City: "台北",
		Stops: []domain.Stop{
			{Day: 1, Time: "09:00", Place: "士林夜市"},
			{Day: 2, Time: "19:00", Place: "士林夜市"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, p.PlaceCalls("台北 士林夜市"))
	require.NotNil(t, it.Stops[0].PlaceInfo)
	require.NotNil(t, it.Stops[1].PlaceInfo)
	assert.Equal(t, it.Stops[0].QualityScore, it.Stops[1].QualityScore)

	// A second build reuses the cache entirely.
	before := p.TotalCalls()
	_, err = s.Score(context.Background(), ScoreRequest{City: "台北", Stops: []domain.Stop{{Day: 1, Place: "士林夜市"}}})
	require.NoError(t, err)
	assert.Equal(t, before, p.TotalCalls())
}

func TestScore_FailedLegDoesNotAffectTheRest(t *testing.T) {
	p := taipeiProvider()
	p.FailRoute("台北 士林夜市", "台北 福華飯店", errors.New("upstream 500"))
	s := newTestScorer(p, ScorerConfig{})

	it, err := s.Score(context.Background(), ScoreRequest{
		City: "台北",
		Stops: []domain.Stop{
			{Day: 1, Time: "09:00-12:00", Place: "台北101"},
			{Day: 1, Time: "18:00-21:00", Place: "士林夜市"},
			{Day: 1, Time: "22:00-23:00", Place: "福華飯店"},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, it.Stops[1].Leg)
	assert.Nil(t, it.Stops[2].Leg)
	assert.Equal(t, 3000, it.TotalDistanceMeters)
	assert.Equal(t, 15, it.TotalDurationMinutes)

	for i, st := range it.Stops {
		assert.NotNil(t, st.QualityScore, "stop %d keeps its score", i)
	}
}

func TestScore_FailedPlaceLeavesStopUnannotated(t *testing.T) {
	p := taipeiProvider()
	s := newTestScorer(p, ScorerConfig{})

	it, err := s.Score(context.Background(), ScoreRequest{
		City: "台北",
		Stops: []domain.Stop{
			{Day: 1, Time: "09:00-12:00", Place: "台北101"},
			{Day: 1, Time: "13:00-14:00", Place: "不存在的地方"},
		},
	})
	require.NoError(t, err)

	assert.Nil(t, it.Stops[1].PlaceInfo)
	assert.Nil(t, it.Stops[1].QualityScore)
	require.NotNil(t, it.RecommendationScore)
	assert.Equal(t, *it.Stops[0].QualityScore, *it.RecommendationScore)
}

func TestScore_LodgingCarriesToNextDay(t *testing.T) {
	p := taipeiProvider()
	s := newTestScorer(p, ScorerConfig{})

	it, err := s.Score(context.Background(), ScoreRequest{
		City: "台北",
		Stops: []domain.Stop{
			{Day: 1, Time: "09:00-12:00", Place: "台北101"},
			{Day: 1, Time: "18:00-21:00", Place: "士林夜市"},
			{Day: 1, Time: "22:00", Place: "福華飯店"},
			{Day: 2, Time: "09:00-12:00", Place: "故宮博物院"},
		},
	})
	require.NoError(t, err)

	leg := it.Stops[3].Leg
	require.NotNil(t, leg)
	assert.Equal(t, "福華飯店", leg.FromPlace)
	assert.Equal(t, 8000, leg.DistanceMeters)

	require.Len(t, it.DaySummaries, 2)
	assert.Equal(t, 25, it.DaySummaries[1].DurationMinutes)
	assert.Equal(t, 15+20+25, it.TotalDurationMinutes)
}

func TestScore_SamePlaceLegNeedsNoLookup(t *testing.T) {
	p := taipeiProvider()
	s := newTestScorer(p, ScorerConfig{})

	it, err := s.Score(context.Background(), ScoreRequest{
		City: "台北",
		Stops: []domain.Stop{
			{Day: 1, Time: "10:00", Place: "士林夜市"},
			{Day: 1, Time: "20:00", Place: "士林夜市"},
		},
	})
	require.NoError(t, err)

	require.NotNil(t, it.Stops[1].Leg)
	assert.Zero(t, it.Stops[1].Leg.DurationSeconds)
	assert.Zero(t, p.RouteCalls("台北 士林夜市", "台北 士林夜市"))
}

func TestScore_HeavyTravelIsPenalised(t *testing.T) {
	p := maps.NewMockProvider(
		[]maps.MockPlace{
			{Query: "花蓮 A", Name: "A", Rating: 4.0, RatingCount: 100},
			{Query: "花蓮 B", Name: "B", Rating: 4.0, RatingCount: 100},
		},
		[]maps.MockPair{{From: "花蓮 A", To: "花蓮 B", Meters: 100000, Seconds: 75 * 60}},
	)
	s := newTestScorer(p, ScorerConfig{})

	it, err := s.Score(context.Background(), ScoreRequest{
		City: "花蓮",
		Stops: []domain.Stop{
			{Day: 1, Time: "09:00-10:00", Place: "A"},
			{Day: 1, Time: "10:00-11:00", Place: "B"},
		},
	})
	require.NoError(t, err)

	// 75 travel minutes over 120 playing minutes.
	assert.InDelta(t, TravelPenalty(75, 120, DefaultPenaltyThreshold), it.TravelPenaltyFactor, 1e-9)
	assert.Less(t, it.TravelPenaltyFactor, 1.0)
	require.NotNil(t, it.RecommendationScore)
	assert.Equal(t, round1(*it.Stops[0].QualityScore*it.TravelPenaltyFactor), *it.RecommendationScore)
}

func TestScore_EmptyInput(t *testing.T) {
	s := newTestScorer(taipeiProvider(), ScorerConfig{})

	it, err := s.Score(context.Background(), ScoreRequest{City: "台北"})
	require.NoError(t, err)
	assert.Empty(t, it.Stops)
	assert.Nil(t, it.RecommendationScore)
	assert.Equal(t, 1.0, it.TravelPenaltyFactor)
}

func TestScore_ResolversUnavailable(t *testing.T) {
	stops := []domain.Stop{
		{Day: 1, Time: "09:00-12:00", Place: "台北101"},
		{Day: 1, Time: "13:00-14:00", Place: "士林夜市"},
	}

	degraded := NewScorer(NewPlaceResolver(nil, nil, 0, nil), NewRouteResolver(nil, nil, 0, nil), nil,
		ScorerConfig{AllowDegraded: true}, discardLogger)

	it, err := degraded.Score(context.Background(), ScoreRequest{City: "台北", Stops: stops})
	require.ErrorIs(t, err, ErrResolversUnavailable)
	require.NotNil(t, it)
	assert.True(t, it.Degraded)
	assert.Len(t, it.Stops, 2)
	assert.Nil(t, it.Stops[0].PlaceInfo)
	assert.Nil(t, it.RecommendationScore)
	assert.Equal(t, 300, it.PlayingTimeMinutes)

	strict := NewScorer(nil, nil, nil, ScorerConfig{}, discardLogger)
	it, err = strict.Score(context.Background(), ScoreRequest{City: "台北", Stops: stops})
	require.ErrorIs(t, err, ErrResolversUnavailable)
	assert.Nil(t, it)
}

func TestScore_DeadlineReturnsPartialItinerary(t *testing.T) {
	p := taipeiProvider()
	p.Delay = time.Second
	s := newTestScorer(p, ScorerConfig{PipelineDeadline: 30 * time.Millisecond})

	start := time.Now()
	it, err := s.Score(context.Background(), ScoreRequest{
		City: "台北",
		Stops: []domain.Stop{
			{Day: 1, Time: "09:00-12:00", Place: "台北101"},
			{Day: 1, Time: "18:00-21:00", Place: "士林夜市"},
		},
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	require.Len(t, it.Stops, 2)
	assert.Nil(t, it.Stops[0].PlaceInfo)
	assert.Nil(t, it.Stops[1].Leg)
	assert.Equal(t, 720, it.PlayingTimeMinutes)
}

func TestScore_DoesNotMutateInput(t *testing.T) {
	s := newTestScorer(taipeiProvider(), ScorerConfig{})

	stops := []domain.Stop{{Day: 0, Place: " 台北101 "}}
	_, err := s.Score(context.Background(), ScoreRequest{City: "台北", Stops: stops})
	require.NoError(t, err)

	assert.Equal(t, domain.Stop{Day: 0, Place: " 台北101 "}, stops[0])
}
