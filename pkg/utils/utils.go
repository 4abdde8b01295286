package utils

import (
	"fmt"
	"time"
)

// FormatAgo renders an elapsed duration as a coarse relative label like
// "3h ago". The largest non-zero unit wins; finer units are used only when
// every coarser unit is zero.
func FormatAgo(d time.Duration) string {
	seconds := int64(d.Seconds())
	if seconds < 0 {
		seconds = 0
	}
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds ago", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm ago", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh ago", seconds/3600)
	default:
		return fmt.Sprintf("%dd ago", seconds/86400)
	}
}
