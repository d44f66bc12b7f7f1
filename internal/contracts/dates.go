package contracts

import (
	"fmt"
	"time"
)

// DateOf truncates t to a UTC calendar date
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts YYYY-MM-DD, RFC3339 and a few spreadsheet layouts
func ParseDate(s string) (time.Time, error) {
	layouts := []string{DateLayout, time.RFC3339, "2006-01-02 15:04:05", "1/2/2006", "2006/01/02", "01-02-06", "1/2/06"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// MonthEnd returns the last day of the month that is `add` months after t's month
func MonthEnd(t time.Time, add int) time.Time {
	return time.Date(t.Year(), t.Month()+time.Month(add)+1, 0, 0, 0, 0, 0, time.UTC)
}

// MonthEndsAfter returns n contiguous month-end dates, the first being the
// month end on or after the day following last
func MonthEndsAfter(last time.Time, n int) []time.Time {
	first := MonthEnd(DateOf(last).AddDate(0, 0, 1), 0)
	out := make([]time.Time, n)
	for i := range out {
		out[i] = MonthEnd(first, i)
	}
	return out
}
