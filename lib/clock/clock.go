package clock

import (
	"fmt"
	"time"
)

var units = []struct {
	name    string
	seconds int64
}{
	{"year", 31536000},
	{"month", 2592000},
	{"day", 86400},
	{"hour", 3600},
	{"minute", 60},
}

// Since reports the largest whole unit elapsed between t and now;
// anything under a minute, including future times, is "just now".
func Since(t, now time.Time) string {
	elapsed := int64(now.Sub(t) / time.Second)
	for _, u := range units {
		n := elapsed / u.seconds
		if n >= 1 {
			suffix := ""
			if n > 1 {
				suffix = "s"
			}
			return fmt.Sprintf("%d %s%s ago", n, u.name, suffix)
		}
	}
	return "just now"
}
