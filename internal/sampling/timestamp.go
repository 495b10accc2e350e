package sampling

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Timestamp is a parsed ISO-8601 instant. Naive timestamps carried no UTC
// offset and are rendered back without one.
type Timestamp struct {
	Time  time.Time
	Naive bool
}

var (
	awareLayouts = []string{
		"2006-01-02T15:04:05.999999999Z07:00",
		"2006-01-02T15:04:05.999999999-0700",
		"2006-01-02T15:04Z07:00",
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02 15:04Z07:00",
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02T15",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

const (
	awareOutputLayout = "2006-01-02T15:04:05-07:00"
	naiveOutputLayout = "2006-01-02T15:04:05"
)

// ParseTimestamp parses the ISO-8601 forms found in record bundles, with or
// without a UTC offset.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range awareLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t, Naive: true}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid ISO-8601 timestamp: %q", s)
}

// String renders the timestamp as 2016-12-05T14:40:00+02:00, or without the
// offset when naive. Sub-second precision is kept when present.
func (t Timestamp) String() string {
	layout := awareOutputLayout
	if t.Naive {
		layout = naiveOutputLayout
	}
	if ns := t.Time.Nanosecond(); ns != 0 {
		layout = strings.Replace(layout, "05", "05.000000", 1)
	}
	return t.Time.Format(layout)
}

// minuteOfDay returns the wall-clock minutes since midnight, seconds dropped
func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// civilDay returns the number of days between the epoch and the wall-clock
// date of t, ignoring its offset.
func civilDay(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// roundTo returns the multiple of n closest to x
func roundTo(x, n int) int {
	return n * int(math.RoundToEven(float64(x)/float64(n)))
}
