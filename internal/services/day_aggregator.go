package services

import (
	"slices"

	"itinerary-scoring-service/internal/domain"
)

// LegPlan names a route that must be resolved to annotate stop To.
type LegPlan struct {
	To        int
	FromPlace string
	ToPlace   string
}

// dayGroup holds the input indices of one day's stops in arrival order.
type dayGroup struct {
	day     int
	indices []int
}

func groupByDay(stops []domain.Stop) []dayGroup {
	pos := make(map[int]int)
	var groups []dayGroup

	for i, s := range stops {
		g, ok := pos[s.Day]
		if !ok {
			g = len(groups)
			pos[s.Day] = g
			groups = append(groups, dayGroup{day: s.Day})
		}
		groups[g].indices = append(groups[g].indices, i)
	}

	slices.SortStableFunc(groups, func(a, b dayGroup) int { return a.day - b.day })
	return groups
}

// PlanLegs lists the legs to resolve for a normalized itinerary.
//
// Within a day each stop is reached from the one before it. The first stop
// of a day is reached from the last lodging stop of the previous scheduled
// day, if that day had one. Stop 0 of the input never gets a leg, and legs
// touching a stop with no usable place name are skipped.
func PlanLegs(stops []domain.Stop, isLodging func(place string) bool) []LegPlan {
	var legs []LegPlan
	carry := ""

	add := func(from string, to int) {
		if to == 0 || !isLookupable(from) || !isLookupable(stops[to].Place) {
			return
		}
		legs = append(legs, LegPlan{To: to, FromPlace: from, ToPlace: stops[to].Place})
	}

	for _, g := range groupByDay(stops) {
		for k, idx := range g.indices {
			if k == 0 {
				if carry != "" {
					add(carry, idx)
				}
				continue
			}
			add(stops[g.indices[k-1]].Place, idx)
		}

		carry = ""
		if isLodging == nil {
			continue
		}
		for _, idx := range g.indices {
			if isLodging(stops[idx].Place) {
				carry = stops[idx].Place
			}
		}
	}

	return legs
}

// DayTotals is the aggregate view of an enriched itinerary.
type DayTotals struct {
	Days                 []domain.DaySummary
	TotalDistanceMeters  int
	TotalDurationMinutes int
	PlayingMinutes       int
}

// Aggregate builds per-day summaries, sorted by day.
//
// Playing time for a day is the span from its earliest start to its latest
// end, not the sum of slot lengths. Travel is attributed to the day of the
// leg's destination stop; missing legs contribute nothing.
func Aggregate(stops []domain.EnrichedStop) DayTotals {
	plain := make([]domain.Stop, len(stops))
	for i, s := range stops {
		plain[i] = s.Stop
	}

	var out DayTotals
	for _, g := range groupByDay(plain) {
		sum := domain.DaySummary{Day: g.day}

		minStart, maxEnd := 0, 0
		for k, idx := range g.indices {
			s := stops[idx]

			w := s.Window()
			if k == 0 || w.Start < minStart {
				minStart = w.Start
			}
			if k == 0 || w.End > maxEnd {
				maxEnd = w.End
			}

			if s.Leg != nil {
				sum.DistanceMeters += s.Leg.DistanceMeters
				sum.DurationMinutes += s.Leg.DurationMinutes()
			}
		}
		sum.PlayingMinutes = max(0, maxEnd-minStart)

		out.Days = append(out.Days, sum)
		out.TotalDistanceMeters += sum.DistanceMeters
		out.TotalDurationMinutes += sum.DurationMinutes
		out.PlayingMinutes += sum.PlayingMinutes
	}

	return out
}
