// Package recurrence resolves the monthly schedule of a recurring
// definition. Only a restricted rule form is supported: a semicolon
// separated list of KEY=VALUE parts carrying one BYMONTHDAY=N, where a
// negative N counts back from the end of the month.
package recurrence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"hogar/internal/calendar"
)

// ClampDayOfMonth bounds an explicit day-of-month to [1, 31].
func ClampDayOfMonth(day int) int {
	if day < 1 {
		return 1
	}
	if day > 31 {
		return 31
	}
	return day
}

// Parse validates rule and returns its BYMONTHDAY value.
func Parse(rule string) (int, error) {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return 0, fmt.Errorf("empty rule")
	}
	rule = strings.TrimPrefix(strings.ToUpper(rule), "RRULE:")

	day, found := 0, false
	for _, part := range strings.Split(rule, ";") {
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return 0, fmt.Errorf("invalid rule part: %q", part)
		}
		key, val := strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1])

		switch key {
		case "FREQ":
			if val != "MONTHLY" {
				return 0, fmt.Errorf("unsupported frequency: %q", val)
			}
		case "BYMONTHDAY":
			if found {
				return 0, fmt.Errorf("BYMONTHDAY given more than once")
			}
			n, err := strconv.Atoi(val)
			if err != nil || n == 0 || n < -31 || n > 31 {
				return 0, fmt.Errorf("invalid BYMONTHDAY: %q", val)
			}
			day, found = n, true
		}
	}
	if !found {
		return 0, fmt.Errorf("BYMONTHDAY is required")
	}
	return day, nil
}

// ResolveDay returns the concrete day of the month a definition falls on.
// A valid rule takes precedence over dayOfMonth. Without either the day
// defaults to 1. Negative rule values resolve against the month's length,
// so -1 is the last day. The result is always in [1, daysInMonth].
func ResolveDay(year int, month time.Month, dayOfMonth *int, rule *string) int {
	dim := calendar.DaysInMonth(year, month)

	day := 1
	if dayOfMonth != nil && *dayOfMonth != 0 {
		day = *dayOfMonth
	}
	if rule != nil {
		if n, err := Parse(*rule); err == nil {
			day = n
		}
	}

	if day < 0 {
		day = dim + day + 1
	}
	if day < 1 {
		day = 1
	}
	if day > dim {
		day = dim
	}
	return day
}

// Occurrence returns the noon-UTC instant a definition falls on in the
// month starting at monthStart.
func Occurrence(monthStart time.Time, dayOfMonth *int, rule *string) time.Time {
	monthStart = calendar.MonthStart(monthStart)
	y, m := monthStart.Year(), monthStart.Month()
	return calendar.NoonUTC(y, m, ResolveDay(y, m, dayOfMonth, rule))
}
