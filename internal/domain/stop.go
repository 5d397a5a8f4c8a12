package domain

const (
	UnspecifiedPlace   = "未指定地點"
	UnspecifiedDetails = "未提供詳情"
	UnspecifiedTime    = "時間未指定"
)

// Represents one scheduled visit in a draft itinerary.
// Stops are read-only once normalized: Day is at least 1, Place is never
// empty and Details holds at least one entry.
type Stop struct {
	Day     int
	Time    string
	Place   string
	Details []string
}

// Window parses the stop's time range.
func (s Stop) Window() TimeWindow {
	return ParseTimeWindow(s.Time)
}

// PlaceInfo is what the place lookup service knows about a location.
// Rating is nil when the provider has no rating for the place.
type PlaceInfo struct {
	Name        string
	Rating      *float64
	RatingCount int
	Address     string
}

// EnrichedStop is a Stop annotated with lookup results.
// Every annotation is optional; a failed lookup leaves its field nil.
type EnrichedStop struct {
	Stop
	PlaceInfo    *PlaceInfo
	QualityScore *float64
	Leg          *TravelLeg
}
