package domain

import (
	"strconv"
	"strings"
)

// DefaultSlotMinutes is the length assumed for a stop with only a start time.
const DefaultSlotMinutes = 60

// TimeWindow is a half-open [Start, End) interval in minutes since midnight.
// End may exceed 1440; windows never wrap around midnight.
type TimeWindow struct {
	Start int
	End   int
}

// Minutes returns the window length, never negative.
func (w TimeWindow) Minutes() int {
	if w.End < w.Start {
		return 0
	}
	return w.End - w.Start
}

// ParseTimeWindow reads "HH:MM-HH:MM" or "HH:MM".
//
// It never fails: an unreadable start becomes 0, an unreadable end becomes
// start+60, and text with no usable time at all yields [0, 60).
func ParseTimeWindow(s string) TimeWindow {
	s = strings.TrimSpace(s)

	startText, endText, hasRange := strings.Cut(s, "-")

	start, ok := parseClock(startText)
	if !ok {
		start = 0
	}

	if !hasRange {
		return TimeWindow{Start: start, End: start + DefaultSlotMinutes}
	}

	end, ok := parseClock(endText)
	if !ok {
		end = start + DefaultSlotMinutes
	}

	return TimeWindow{Start: start, End: end}
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "：", ":"))

	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}

	h, err := strconv.Atoi(strings.TrimSpace(hh))
	if err != nil || h < 0 {
		return 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(mm))
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}

	return h*60 + m, true
}
