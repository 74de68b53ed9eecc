// Package present formats records for display: dates, asset URLs, strings,
// and the island hydration directives the frontend uses per component.
package present

import (
	"fmt"
	"strconv"
	"time"
)

// InvalidDate is returned for values that cannot be read as a time.
const InvalidDate = "Invalid date"

// DefaultDateLayout renders as "January 2, 2006".
const DefaultDateLayout = "January 2, 2006"

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts a time.Time, a *time.Time, an RFC3339 or plain date
// string, or unix milliseconds (int, int64, float64 or a numeric string).
func ParseTime(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, !v.IsZero()
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, !v.IsZero()
	case int:
		return time.UnixMilli(int64(v)).UTC(), true
	case int64:
		return time.UnixMilli(v).UTC(), true
	case float64:
		return time.UnixMilli(int64(v)).UTC(), true
	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
	}
	return time.Time{}, false
}

// FormatDate formats value with layout, or DefaultDateLayout when layout is empty.
func FormatDate(value interface{}, layout string) string {
	t, ok := ParseTime(value)
	if !ok {
		return InvalidDate
	}
	if layout == "" {
		layout = DefaultDateLayout
	}
	return t.Format(layout)
}

// FormatRelativeTime describes value relative to now ("3 hours ago").
// Months are 30 days and years are 12 such months.
func FormatRelativeTime(value interface{}, now time.Time) string {
	t, ok := ParseTime(value)
	if !ok {
		return InvalidDate
	}

	sec := int64(now.Sub(t) / time.Second)
	min := sec / 60
	hr := min / 60
	days := hr / 24
	months := days / 30
	years := months / 12

	switch {
	case sec < 60:
		return "just now"
	case min < 60:
		return plural(min, "minute")
	case hr < 24:
		return plural(hr, "hour")
	case days < 30:
		return plural(days, "day")
	case months < 12:
		return plural(months, "month")
	default:
		return plural(years, "year")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
