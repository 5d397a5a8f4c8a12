package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LookupsTotal counts external place and route lookups by outcome.
	LookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itinerary_lookups_total",
		Help: "External lookups by kind (place, route) and outcome.",
	}, []string{"kind", "outcome"})

	// CacheRequestsTotal counts cache reads by kind and result (hit, miss, error).
	CacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itinerary_cache_requests_total",
		Help: "Place and route cache reads by result.",
	}, []string{"kind", "result"})

	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "itinerary_operation_duration_seconds",
		Help:    "Duration of timed operations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	// ItinerariesScored counts finished pipeline runs by outcome (ok, degraded, failed).
	ItinerariesScored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itinerary_scored_total",
		Help: "Itineraries run through the scoring pipeline.",
	}, []string{"outcome"})
)
