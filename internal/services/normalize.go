package services

import (
	"strings"

	"itinerary-scoring-service/internal/domain"
)

// NormalizeStops fills the gaps a draft itinerary may have so every later
// step can rely on a complete Stop. It returns new values and leaves the
// input untouched.
//
// A missing place becomes a sentinel that is never looked up, empty details
// become a one-entry sentinel list, an empty time is labelled as unspecified
// (and parses to the default window), and a non-positive day inherits the day
// of the stop before it, or 1 for the first stop.
func NormalizeStops(in []domain.Stop) []domain.Stop {
	out := make([]domain.Stop, 0, len(in))
	prevDay := 1

	for _, s := range in {
		n := domain.Stop{
			Day:   s.Day,
			Time:  strings.TrimSpace(s.Time),
			Place: strings.Join(strings.Fields(s.Place), " "),
		}

		if n.Day <= 0 {
			n.Day = prevDay
		}
		prevDay = n.Day

		if n.Place == "" {
			n.Place = domain.UnspecifiedPlace
		}
		if n.Time == "" {
			n.Time = domain.UnspecifiedTime
		}

		for _, d := range s.Details {
			if d = strings.TrimSpace(d); d != "" {
				n.Details = append(n.Details, d)
			}
		}
		if len(n.Details) == 0 {
			n.Details = []string{domain.UnspecifiedDetails}
		}

		out = append(out, n)
	}

	return out
}

// isLookupable reports whether place names something worth sending to a
// lookup service.
func isLookupable(place string) bool {
	return place != "" && place != domain.UnspecifiedPlace
}

// PlaceQuery builds the lookup text for a place, prefixing the city unless
// the name already carries it.
func PlaceQuery(name, city string) string {
	name = strings.TrimSpace(name)
	city = strings.TrimSpace(city)
	if city == "" || strings.HasPrefix(name, city) {
		return name
	}
	return city + " " + name
}
