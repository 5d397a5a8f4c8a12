package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"unicode"

	"itinerary-scoring-service/internal/domain"
)

// ScoreRequest is a draft itinerary as produced by the planner.
type ScoreRequest struct {
	City     string           `json:"city"`
	Sections []SectionRequest `json:"sections"`
}

// SectionRequest is one scheduled stop. Day and Details accept the loose
// shapes planners produce: "Day 2" or "2" for a day, a bare string for details.
type SectionRequest struct {
	Day      FlexibleDay     `json:"day"`
	Time     string          `json:"time"`
	Location string          `json:"location"`
	Details  FlexibleStrings `json:"details"`
}

// FlexibleDay decodes a JSON number or a string containing one.
// Anything else decodes to 0, which the pipeline treats as "same day as before".
type FlexibleDay int

func (d *FlexibleDay) UnmarshalJSON(b []byte) error {
	*d = 0

	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		if f, err := n.Float64(); err == nil {
			*d = FlexibleDay(int(f))
		}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return nil
	}
	digits := strings.TrimFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if i := strings.IndexFunc(digits, func(r rune) bool { return !unicode.IsDigit(r) }); i >= 0 {
		digits = digits[:i]
	}
	if v, err := strconv.Atoi(digits); err == nil {
		*d = FlexibleDay(v)
	}
	return nil
}

// FlexibleStrings decodes a list of strings, a single string, or null.
// Non-string list entries are skipped.
type FlexibleStrings []string

func (f *FlexibleStrings) UnmarshalJSON(b []byte) error {
	*f = nil

	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		*f = FlexibleStrings{single}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			*f = append(*f, s)
		}
	}
	return nil
}

// ToStops converts request sections into domain stops.
func (r ScoreRequest) ToStops() []domain.Stop {
	stops := make([]domain.Stop, 0, len(r.Sections))
	for _, s := range r.Sections {
		stops = append(stops, domain.Stop{
			Day:     int(s.Day),
			Time:    s.Time,
			Place:   s.Location,
			Details: []string(s.Details),
		})
	}
	return stops
}

type TravelInfoResponse struct {
	From            string `json:"from"`
	To              string `json:"to"`
	Distance        string `json:"distance"`
	Duration        string `json:"duration"`
	Mode            string `json:"mode"`
	DistanceMeters  int    `json:"distanceMeters"`
	DurationSeconds int    `json:"durationSeconds"`
}

type StopResponse struct {
	Day              int                 `json:"day"`
	Time             string              `json:"time"`
	Location         string              `json:"location"`
	Details          []string            `json:"details"`
	ResolvedName     string              `json:"resolvedName,omitempty"`
	Rating           *float64            `json:"rating,omitempty"`
	UserRatingsTotal *int                `json:"userRatingsTotal,omitempty"`
	Address          string              `json:"address,omitempty"`
	WilsonScore      *float64            `json:"wilsonScore,omitempty"`
	TravelInfo       *TravelInfoResponse `json:"travelInfo,omitempty"`
}

type DaySummaryResponse struct {
	Day             int    `json:"day"`
	Distance        string `json:"distance"`
	Duration        string `json:"duration"`
	DistanceMeters  int    `json:"distanceMeters"`
	DurationMinutes int    `json:"durationMinutes"`
	PlayingMinutes  int    `json:"playingMinutes"`
}

type ItineraryResponse struct {
	City                 string               `json:"city"`
	Stops                []StopResponse       `json:"stops"`
	DaySummaries         []DaySummaryResponse `json:"daySummaries"`
	TotalDistance        string               `json:"totalDistance"`
	TotalDuration        string               `json:"totalDuration"`
	PlayingTimeDisplay   string               `json:"playingTimeDisplay"`
	TravelRatioDisplay   string               `json:"travelRatioDisplay"`
	RecommendationScore  *float64             `json:"recommendationScore"`
	TotalDistanceMeters  int                  `json:"totalDistanceMeters"`
	TotalDurationMinutes int                  `json:"totalDurationMinutes"`
	PlayingTimeMinutes   int                  `json:"playingTimeMinutes"`
	TravelPenaltyFactor  float64              `json:"travelPenaltyFactor"`
	Degraded             bool                 `json:"degraded"`
	Warning              string               `json:"warning,omitempty"`
}

// FromItinerary renders an itinerary with its zh-TW display strings.
func FromItinerary(it *domain.Itinerary) ItineraryResponse {
	res := ItineraryResponse{
		City:                 it.City,
		Stops:                make([]StopResponse, 0, len(it.Stops)),
		DaySummaries:         make([]DaySummaryResponse, 0, len(it.DaySummaries)),
		TotalDistance:        domain.FormatDistance(it.TotalDistanceMeters),
		TotalDuration:        domain.FormatDuration(it.TotalDurationMinutes),
		PlayingTimeDisplay:   domain.FormatPlayingTime(it.PlayingTimeMinutes),
		TravelRatioDisplay:   domain.FormatRatio(it.TravelRatio()),
		RecommendationScore:  it.RecommendationScore,
		TotalDistanceMeters:  it.TotalDistanceMeters,
		TotalDurationMinutes: it.TotalDurationMinutes,
		PlayingTimeMinutes:   it.PlayingTimeMinutes,
		TravelPenaltyFactor:  it.TravelPenaltyFactor,
		Degraded:             it.Degraded,
	}

	for _, s := range it.Stops {
		sr := StopResponse{
			Day:         s.Day,
			Time:        s.Time,
			Location:    s.Place,
			Details:     s.Details,
			WilsonScore: s.QualityScore,
		}

		if p := s.PlaceInfo; p != nil {
			count := p.RatingCount
			sr.ResolvedName = p.Name
			sr.Rating = p.Rating
			sr.UserRatingsTotal = &count
			sr.Address = p.Address
		}

		if l := s.Leg; l != nil {
			sr.TravelInfo = &TravelInfoResponse{
				From:            l.FromPlace,
				To:              l.ToPlace,
				Distance:        domain.FormatDistance(l.DistanceMeters),
				Duration:        domain.FormatDuration(l.DurationMinutes()),
				Mode:            l.Mode,
				DistanceMeters:  l.DistanceMeters,
				DurationSeconds: l.DurationSeconds,
			}
		}

		res.Stops = append(res.Stops, sr)
	}

	for _, d := range it.DaySummaries {
		res.DaySummaries = append(res.DaySummaries, DaySummaryResponse{
			Day:             d.Day,
			Distance:        domain.FormatDistance(d.DistanceMeters),
			Duration:        domain.FormatDuration(d.DurationMinutes),
			DistanceMeters:  d.DistanceMeters,
			DurationMinutes: d.DurationMinutes,
			PlayingMinutes:  d.PlayingMinutes,
		})
	}

	return res
}

type PlaceResponse struct {
	Query            string   `json:"query"`
	Name             string   `json:"name"`
	Rating           *float64 `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"userRatingsTotal"`
	Address          string   `json:"address"`
	WilsonScore      *float64 `json:"wilsonScore,omitempty"`
}

type RouteResponse struct {
	From            string `json:"from"`
	To              string `json:"to"`
	Mode            string `json:"mode"`
	Distance        string `json:"distance"`
	Duration        string `json:"duration"`
	DistanceMeters  int    `json:"distanceMeters"`
	DurationSeconds int    `json:"durationSeconds"`
}
