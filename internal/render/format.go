package render

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// TimeAgo renders t relative to now: minutes under an hour (never less
// than one), hours under a day, days up to ten, then the date.
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	minutes := int(d / time.Minute)
	hours := int(d / time.Hour)
	days := int(d / (24 * time.Hour))

	switch {
	case minutes < 60:
		return fmt.Sprintf("%dm ago", max(minutes, 1))
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days <= 10:
		return fmt.Sprintf("%dd ago", days)
	default:
		return t.Local().Format("2006. 1. 2.")
	}
}

// Views renders a view count.
func Views(n int) string {
	if n == 1 {
		return "1 view"
	}
	return humanize.Comma(int64(n)) + " views"
}

// Count renders n with a singular or plural noun.
func Count(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return humanize.Comma(int64(n)) + " " + plural
}

// Bytes renders a size such as "1.2 MB".
func Bytes(n int) string {
	return humanize.Bytes(uint64(n))
}
