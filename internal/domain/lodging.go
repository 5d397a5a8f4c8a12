package domain

import (
	"strings"
	"unicode"
)

// DefaultLodgingKeywords marks a place name as overnight accommodation.
var DefaultLodgingKeywords = []string{
	"飯店", "旅館", "民宿", "酒店", "旅店", "住宿",
	"hotel", "hostel", "inn", "guesthouse", "resort", "motel",
}

// LodgingClassifier decides whether a stop is where the traveller sleeps.
//
// Keywords written in Latin script must match a whole word, case-insensitively,
// so "inn" does not match "Dinner". Other keywords match as substrings since
// CJK names carry no word boundaries.
type LodgingClassifier struct {
	words     map[string]struct{}
	fragments []string
}

func NewLodgingClassifier(keywords []string) *LodgingClassifier {
	c := &LodgingClassifier{words: make(map[string]struct{})}

	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if isLatin(k) {
			c.words[k] = struct{}{}
			continue
		}
		c.fragments = append(c.fragments, k)
	}

	return c
}

// IsLodging reports whether place names an accommodation.
func (c *LodgingClassifier) IsLodging(place string) bool {
	if c == nil {
		return false
	}

	lower := strings.ToLower(place)
	for _, f := range c.fragments {
		if strings.Contains(lower, f) {
			return true
		}
	}

	if len(c.words) == 0 {
		return false
	}
	for _, w := range strings.FieldsFunc(lower, notWordRune) {
		if _, ok := c.words[w]; ok {
			return true
		}
	}

	return false
}

func isLatin(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func notWordRune(r rune) bool {
	return r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r))
}
