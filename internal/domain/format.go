package domain

import "fmt"

// FormatDistance renders meters as kilometres with one decimal, e.g. "3.0 公里".
func FormatDistance(meters int) string {
	return fmt.Sprintf("%.1f 公里", float64(meters)/1000)
}

// FormatDuration renders minutes as "45 分鐘" or "1 小時 5 分鐘".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d 分鐘", minutes)
	}
	return fmt.Sprintf("%d 小時 %d 分鐘", minutes/60, minutes%60)
}

// FormatPlayingTime renders minutes compactly, e.g. "8小時30分" or "45分鐘".
func FormatPlayingTime(minutes int) string {
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%d小時%d分", h, m)
	}
	return fmt.Sprintf("%d分鐘", m)
}

// FormatRatio renders a fraction as a percentage with one decimal.
func FormatRatio(r float64) string {
	return fmt.Sprintf("%.1f%%", r*100)
}
