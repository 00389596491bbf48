// Package render turns configuration, a holiday set and a reference date
// into a fully specified plan that a presentation layer can draw without any
// calendar logic of its own.
package render

import (
	"strconv"
	"strings"
	"time"

	"threemonthcal/internal/grid"
	"threemonthcal/internal/layout"
	"threemonthcal/internal/model"
	"threemonthcal/internal/theme"
)

// ClickAction is what a tap on the calendar opens.
type ClickAction int

const (
	ClickNone ClickAction = iota
	ClickCalendarApp
	ClickHolidayFeed
)

func (a ClickAction) String() string {
	switch a {
	case ClickCalendarApp:
		return "calendar_app"
	case ClickHolidayFeed:
		return "holiday_feed"
	default:
		return "none"
	}
}

// ParseClickAction maps a config value to a ClickAction.
func ParseClickAction(s string) (ClickAction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return ClickNone, true
	case "calendar_app":
		return ClickCalendarApp, true
	case "holiday_feed":
		return ClickHolidayFeed, true
	default:
		return ClickNone, false
	}
}

// CalendarAppURL opens the system calendar application.
const CalendarAppURL = "ical://"

// Options is the display configuration of a plan.
type Options struct {
	WeekStart        grid.WeekStart
	MonthNameStyle   grid.NameStyle
	WeekdayNameStyle grid.NameStyle

	Preset     theme.Preset
	Overrides  theme.Overrides
	Appearance theme.Appearance

	Click ClickAction
	// FeedURL is the resolved holiday feed, opened by ClickHolidayFeed.
	FeedURL string

	// Today is the current date. If zero, the reference date is today.
	Today time.Time

	// Error is a transient banner message; empty when there is none.
	Error string
}

// Day is one cell of a month.
type Day struct {
	Label   string `json:"label"`
	Day     int    `json:"day,omitempty"`
	Key     string `json:"key,omitempty"`
	InMonth bool   `json:"in_month"`
	Holiday bool   `json:"holiday,omitempty"`
	Today   bool   `json:"today,omitempty"`
	Color   string `json:"color"`
}

// Weekday is one column header.
type Weekday struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Month is one of the three months with its placement.
type Month struct {
	Title    string                `json:"title"`
	Key      string                `json:"key"`
	Current  bool                  `json:"current"`
	Weekdays [grid.Columns]Weekday `json:"weekdays"`
	Days     [grid.Cells]Day       `json:"days"`
	Slot     layout.Slot           `json:"slot"`
}

// Plan is everything a presentation layer needs to draw the calendar.
type Plan struct {
	Class       string             `json:"size_class"`
	Arrangement layout.Arrangement `json:"arrangement"`
	Size        layout.Size        `json:"size"`
	Ratio       float64            `json:"ratio,omitempty"`
	Reference   string             `json:"reference"`
	WeekStart   string             `json:"week_start"`
	Months      []Month            `json:"months"`
	ActionURL   string             `json:"action_url,omitempty"`
	Error       string             `json:"error,omitempty"`
}

// Build computes the plan for the months around ref in the given frame.
// Months are in order previous, current, next; an unsupported frame yields
// no months.
func Build(opts Options, holidays theme.HolidayChecker, ref time.Time, class layout.SizeClass, size layout.Size) Plan {
	today := opts.Today
	if today.IsZero() {
		today = ref
	}
	today = today.In(ref.Location())

	months := model.SurroundingMonths(ref)
	var grids [3]grid.MonthGrid
	var rows [3]int
	for i, m := range months {
		grids[i] = grid.Build(m, opts.WeekStart)
		rows[i] = grids[i].OccupiedRows()
	}

	lp := layout.Select(layout.Input{
		Class:             class,
		Size:              size,
		Rows:              rows,
		DominantIsCurrent: model.MonthToken(months[1]) == model.MonthToken(today),
	})

	plan := Plan{
		Class:       class.String(),
		Arrangement: lp.Arrangement,
		Size:        lp.Size,
		Ratio:       lp.Ratio,
		Reference:   model.DayKey(ref),
		WeekStart:   opts.WeekStart.String(),
		Months:      []Month{},
		ActionURL:   actionURL(opts),
		Error:       opts.Error,
	}
	if lp.Arrangement == layout.Unsupported {
		return plan
	}

	colors := theme.Resolve(opts.Preset, opts.Overrides, opts.Appearance)
	todayKey := model.DayKey(today)

	for i, g := range grids {
		plan.Months = append(plan.Months, buildMonth(g, lp.Slots[i], i == 1, opts, colors, holidays, todayKey))
	}
	return plan
}

func buildMonth(g grid.MonthGrid, slot layout.Slot, current bool, opts Options, colors theme.ColorSet, holidays theme.HolidayChecker, todayKey string) Month {
	m := Month{
		Title:   grid.MonthTitle(g.Month, opts.MonthNameStyle, current),
		Key:     model.MonthToken(g.Month),
		Current: current,
		Slot:    slot,
	}

	columnWidth := slot.Frame.Width / grid.Columns
	order := grid.WeekdayOrder(opts.WeekStart)
	labels := grid.WeekdayLabels(opts.WeekStart, opts.WeekdayNameStyle, columnWidth)
	for i, wd := range order {
		m.Weekdays[i] = Weekday{Label: labels[i], Color: theme.Hex(colors.ForWeekday(wd))}
	}

	for i, c := range g.Cells {
		if c.Blank() {
			m.Days[i] = Day{Color: theme.Hex(theme.Secondary)}
			continue
		}
		key := model.DayKey(c.Date)
		isHoliday := holidays != nil && holidays.IsHoliday(c.Date)
		m.Days[i] = Day{
			Label:   strconv.Itoa(c.Day),
			Day:     c.Day,
			Key:     key,
			InMonth: true,
			Holiday: isHoliday,
			Today:   key == todayKey,
			Color:   theme.Hex(colors.ForDay(c.Date, true, holidays)),
		}
	}
	return m
}

func actionURL(opts Options) string {
	switch opts.Click {
	case ClickCalendarApp:
		return CalendarAppURL
	case ClickHolidayFeed:
		return opts.FeedURL
	default:
		return ""
	}
}
