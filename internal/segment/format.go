package segment

import (
	"fmt"
	"time"
)

// FormatTimestamp renders d as hh:mm:ss. When alwaysHours is false the hour
// field is omitted for offsets under an hour (mm:ss). Sub-second precision is
// truncated and negative offsets clamp to zero.
func FormatTimestamp(d time.Duration, alwaysHours bool) string {
	total := int64(d / time.Second)
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if alwaysHours || h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatRange renders a window as "mm:ss-mm:ss", switching both ends to
// hh:mm:ss once the window reaches an hour.
func FormatRange(from, to time.Duration) string {
	alwaysHours := to >= time.Hour
	return FormatTimestamp(from, alwaysHours) + "-" + FormatTimestamp(to, alwaysHours)
}

// Seconds converts a float number of seconds to a duration.
func Seconds(sec float64) time.Duration {
	return fromSeconds(sec)
}
