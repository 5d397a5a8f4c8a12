package domain

// Route is the result of one directions lookup between two places.
// Distances and durations are kept numeric so totals never depend on
// provider display text.
type Route struct {
	DistanceMeters  int
	DurationSeconds int
	Mode            string
}

// DurationMinutes rounds the route duration to whole minutes.
func (r Route) DurationMinutes() int {
	return (r.DurationSeconds + 30) / 60
}

// Represents the journey into a stop from the stop before it.
// A TravelLeg is attached to its destination stop, so the first stop of a trip
// never carries one.
type TravelLeg struct {
	FromPlace string
	ToPlace   string
	Route
}
