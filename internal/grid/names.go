package grid

import (
	"strings"
	"time"
)

// NameStyle controls how month and weekday names are spelled.
type NameStyle int

const (
	NameAuto NameStyle = iota
	NameFull
	NameShort
)

func (s NameStyle) String() string {
	switch s {
	case NameFull:
		return "full"
	case NameShort:
		return "short"
	default:
		return "auto"
	}
}

// ParseNameStyle maps "auto" / "full" / "short" to a NameStyle. Anything else
// yields NameAuto and ok=false.
func ParseNameStyle(s string) (NameStyle, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return NameAuto, true
	case "full":
		return NameFull, true
	case "short":
		return NameShort, true
	default:
		return NameAuto, false
	}
}

// AutoWeekdayMinColumn is the column width, in points, from which the auto
// style spells weekdays as "Sun" instead of "S". Tuned for widget-sized
// frames; treat it as a knob, not a rule.
var AutoWeekdayMinColumn = 18.0

// MonthTitle returns the title of month. Auto spells the current month in
// full ("January 2026") and the others short ("Jan 2026").
func MonthTitle(month time.Time, style NameStyle, current bool) string {
	full := style == NameFull || (style == NameAuto && current)
	if full {
		return month.Format("January 2006")
	}
	return month.Format("Jan 2006")
}

// WeekdayLabel returns the header label of weekday. Full is the three-letter
// abbreviation, short the first letter.
func WeekdayLabel(weekday time.Weekday, style NameStyle, columnWidth float64) string {
	name := weekday.String()
	if style == NameAuto {
		style = NameShort
		if columnWidth >= AutoWeekdayMinColumn {
			style = NameFull
		}
	}
	if style == NameShort {
		return name[:1]
	}
	return name[:3]
}

// WeekdayLabels returns the header labels in column order.
func WeekdayLabels(weekStart WeekStart, style NameStyle, columnWidth float64) [Columns]string {
	var out [Columns]string
	for i, wd := range WeekdayOrder(weekStart) {
		out[i] = WeekdayLabel(wd, style, columnWidth)
	}
	return out
}
