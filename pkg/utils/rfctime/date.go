package rfctime

import (
	"fmt"
	"strings"
	"time"
)

// Format string for calendar dates (full-date in RFC3339).
const DateFormat = "2006-01-02"

// Format strings for dates shown to people.
const (
	DayMonthYear = "02/01/2006"
	DayMonth     = "02/01"
)

// ParseDate parses s as a RFC3339 date-time or a full-date.
//
// A full-date (like "2024-05-10") means the midnight of the day in loc.
// Date-times keep their own offset.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(RFC3339DateTimeFormatZ, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(DateFormat, s, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("not a date nor date-time: %q", s)
}

// StartOfDay returns the midnight of the day of t, in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
