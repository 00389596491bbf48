// Package grid builds the fixed 6×7 day grid of a month.
package grid

import (
	"strings"
	"time"

	"threemonthcal/internal/model"
)

const (
	// Columns is the number of weekday columns.
	Columns = 7
	// Rows is the number of week rows every grid carries.
	Rows = 6
	// Cells is the fixed number of cells in a grid.
	Cells = Rows * Columns
)

// WeekStart is the weekday shown in the first column.
type WeekStart int

const (
	Sunday WeekStart = iota
	Monday
)

func (w WeekStart) String() string {
	if w == Monday {
		return "monday"
	}
	return "sunday"
}

// ParseWeekStart maps "sunday" / "monday" (case-insensitive) to a WeekStart.
// Anything else yields Sunday and ok=false.
func ParseWeekStart(s string) (WeekStart, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunday":
		return Sunday, true
	case "monday":
		return Monday, true
	default:
		return Sunday, false
	}
}

// Cell is one grid slot. Day is 0 for a blank cell.
type Cell struct {
	Day  int
	Date time.Time
}

// Blank reports whether the cell pads the grid before day 1 or after the
// last day.
func (c Cell) Blank() bool {
	return c.Day == 0
}

// MonthGrid is the day grid of one month.
type MonthGrid struct {
	// Month is midnight on the first day of the month.
	Month time.Time
	// Leading is the number of blank cells before day 1.
	Leading int
	// Days is the number of days in the month.
	Days  int
	Cells [Cells]Cell
}

// Build lays out the month containing month under weekStart. The first
// Leading cells are blank, followed by one cell per day, and blanks pad the
// grid to 42 cells.
func Build(month time.Time, weekStart WeekStart) MonthGrid {
	first := model.StartOfMonth(month)
	g := MonthGrid{
		Month:   first,
		Leading: LeadingBlanks(first.Weekday(), weekStart),
		Days:    model.DaysIn(first),
	}

	for day := 1; day <= g.Days; day++ {
		g.Cells[g.Leading+day-1] = Cell{
			Day:  day,
			Date: first.AddDate(0, 0, day-1),
		}
	}
	return g
}

// OccupiedRows is the number of week rows that hold at least one day.
func (g MonthGrid) OccupiedRows() int {
	return (g.Leading + g.Days + Columns - 1) / Columns
}

// LeadingBlanks returns the column index of weekday under weekStart.
//
// With the host numbering Sunday=1 … Saturday=7 the column is
// max(0, weekday-1) for a Sunday start and (weekday+5) mod 7 for a Monday
// start.
func LeadingBlanks(weekday time.Weekday, weekStart WeekStart) int {
	hostWeekday := int(weekday) + 1
	switch weekStart {
	case Monday:
		return (hostWeekday + 5) % 7
	default:
		return max(0, hostWeekday-1)
	}
}

// WeekdayOrder returns the weekdays in column order.
func WeekdayOrder(weekStart WeekStart) [Columns]time.Weekday {
	var out [Columns]time.Weekday
	offset := 0
	if weekStart == Monday {
		offset = 1
	}
	for i := range out {
		out[i] = time.Weekday((i + offset) % Columns)
	}
	return out
}
