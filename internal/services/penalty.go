package services

// DefaultPenaltyThreshold is the travel/playing ratio tolerated without penalty.
const DefaultPenaltyThreshold = 0.25

// TravelPenalty returns a multiplier in [0, 1] that discounts an itinerary
// spending too much time in transit.
//
// Up to threshold travel minutes per playing minute cost nothing; beyond it
// the factor falls linearly and reaches 0 when travel equals playing time.
func TravelPenalty(travelMinutes, playingMinutes int, threshold float64) float64 {
	if playingMinutes <= 0 || travelMinutes <= 0 {
		return 1.0
	}
	if threshold < 0 || threshold >= 1 {
		threshold = DefaultPenaltyThreshold
	}

	ratio := float64(travelMinutes) / float64(playingMinutes)
	if ratio <= threshold {
		return 1.0
	}

	factor := 1 - (ratio-threshold)/(1-threshold)
	if factor < 0 {
		return 0
	}
	return factor
}
