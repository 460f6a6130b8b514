// Package calendar holds the UTC month and day arithmetic shared by the
// ledger, planned and recurring services.
package calendar

import (
	"fmt"
	"regexp"
	"time"
)

// MonthLayout is the YYYY-MM layout accepted for month parameters.
const MonthLayout = "2006-01"

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ParseMonth parses a strict YYYY-MM string into the first instant of that
// month in UTC.
func ParseMonth(s string) (time.Time, error) {
	if !monthPattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("invalid month %q", s)
	}
	t, err := time.ParseInLocation(MonthLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// FormatMonth renders t as YYYY-MM in UTC.
func FormatMonth(t time.Time) string {
	return t.UTC().Format(MonthLayout)
}

// MonthStart returns the first instant of t's month in UTC.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthWindow returns [start, end) covering the month that begins at start.
// end is the first instant of the following month.
func MonthWindow(start time.Time) (time.Time, time.Time) {
	start = MonthStart(start)
	return start, start.AddDate(0, 1, 0)
}

// DayWindow returns [start, end) covering t's calendar day in UTC.
func DayWindow(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NoonUTC returns 12:00 UTC on the given date.
func NoonUTC(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}
