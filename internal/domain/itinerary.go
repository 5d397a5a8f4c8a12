package domain

// DaySummary aggregates the legs arriving at stops of a single day.
type DaySummary struct {
	Day             int
	DistanceMeters  int
	DurationMinutes int
	PlayingMinutes  int
}

// Itinerary is the fully enriched and scored output of the pipeline.
//
// Stops keep their input order. DaySummaries are sorted by day.
// RecommendationScore is nil when no stop produced a quality score.
// Degraded is set when enrichment was skipped because no lookup service
// was available.
type Itinerary struct {
	City                 string
	Stops                []EnrichedStop
	DaySummaries         []DaySummary
	TotalDistanceMeters  int
	TotalDurationMinutes int
	PlayingTimeMinutes   int
	TravelPenaltyFactor  float64
	RecommendationScore  *float64
	Degraded             bool
}

// TravelRatio is the share of the trip spent moving between stops,
// travel / (playing + travel). It is 0 for an empty trip.
func (it *Itinerary) TravelRatio() float64 {
	total := it.PlayingTimeMinutes + it.TotalDurationMinutes
	if total <= 0 {
		return 0
	}
	return float64(it.TotalDurationMinutes) / float64(total)
}
