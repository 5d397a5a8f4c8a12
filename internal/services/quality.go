package services

import "math"

// wilsonZ is the normal quantile for a 95% confidence interval.
const wilsonZ = 1.96

// WilsonScore discounts a 0-5 star rating by how few reviews support it.
//
// It returns the lower bound of the Wilson interval for p = rating/5 over
// ratingCount trials, scaled back to stars with one decimal. The score is
// always below the raw rating. ok is false when there is nothing to score:
// no reviews, no rating, or a rating outside (0, 5].
func WilsonScore(rating float64, ratingCount int) (score float64, ok bool) {
	if ratingCount <= 0 || rating <= 0 || rating > 5 {
		return 0, false
	}

	p := rating / 5
	n := float64(ratingCount)
	z2 := wilsonZ * wilsonZ

	denom := 1 + z2/n
	if denom == 0 {
		return 0, false
	}

	lower := (p + z2/(2*n) - wilsonZ*math.Sqrt(p*(1-p)/n+z2/(4*n*n))) / denom
	v := lower * 5
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}

	// Rounding half-up can land on the rating itself for large samples;
	// truncate instead so the bound stays below it.
	score = round1(v)
	if score >= rating {
		score = math.Floor(v*10) / 10
	}
	if score < 0 {
		score = 0
	}

	return score, true
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
