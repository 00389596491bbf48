// Package model holds the date keys shared by the holiday cache, the grid
// and the render plan.
package model

import (
	"fmt"
	"time"
)

const (
	// DayKeyLayout renders a date as a day-key, e.g. "2026-03-01".
	DayKeyLayout = "2006-01-02"
	// MonthTokenLayout renders a month as a month-token, e.g. "2026-03".
	MonthTokenLayout = "2006-01"
)

// DayKey returns the day-key of t in t's own location.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// MonthToken returns the month-token of t in t's own location.
func MonthToken(t time.Time) string {
	return t.Format(MonthTokenLayout)
}

// ParseDayKey parses a day-key into midnight of that date in loc.
// A nil loc means time.Local.
func ParseDayKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DayKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("model: invalid day key %q: %w", key, err)
	}
	return t, nil
}

// YearOfKey returns the year encoded in a day-key without a full parse.
func YearOfKey(key string) (int, bool) {
	if len(key) < 4 {
		return 0, false
	}
	year := 0
	for _, c := range key[:4] {
		if c < '0' || c > '9' {
			return 0, false
		}
		year = year*10 + int(c-'0')
	}
	return year, true
}

// StartOfMonth returns midnight on the first day of t's month in t's location.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StartOfDay returns midnight of t's date in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysIn returns the number of days in t's month.
func DaysIn(t time.Time) int {
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}

// SurroundingMonths returns the first days of the previous, current and next
// month relative to ref.
func SurroundingMonths(ref time.Time) [3]time.Time {
	cur := StartOfMonth(ref)
	return [3]time.Time{cur.AddDate(0, -1, 0), cur, cur.AddDate(0, 1, 0)}
}
