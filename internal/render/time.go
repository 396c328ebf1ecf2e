package render

import (
	"time"

	"github.com/dustin/go-humanize"
)

// TimeAgo formats t relative to now, e.g. "3 hours ago". The zero time
// renders as an empty string.
func TimeAgo(t time.Time) string {
	return timeAgoAt(t, time.Now())
}

func timeAgoAt(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	if d := now.Sub(t); d >= 0 && d < time.Minute {
		return "just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}
