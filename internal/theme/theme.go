// Package theme resolves the weekday / Sunday / Saturday / holiday colors
// from a preset and optional hex overrides.
package theme

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"
	"time"
)

// Preset is a built-in color scheme.
type Preset int

const (
	Classic Preset = iota
	Cool
	Warm
	Mono
)

func (p Preset) String() string {
	switch p {
	case Cool:
		return "cool"
	case Warm:
		return "warm"
	case Mono:
		return "mono"
	default:
		return "classic"
	}
}

// ParsePreset maps a preset name to a Preset. Unknown names yield Classic
// and ok=false.
func ParsePreset(s string) (Preset, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "classic", "":
		return Classic, true
	case "cool":
		return Cool, true
	case "warm":
		return Warm, true
	case "mono":
		return Mono, true
	default:
		return Classic, false
	}
}

// Appearance is the host's light or dark mode.
type Appearance int

const (
	Light Appearance = iota
	Dark
)

func (a Appearance) String() string {
	if a == Dark {
		return "dark"
	}
	return "light"
}

func ParseAppearance(s string) (Appearance, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light", "":
		return Light, true
	case "dark":
		return Dark, true
	default:
		return Light, false
	}
}

// Overrides are user hex colors per category. Empty means "use the preset".
type Overrides struct {
	Weekday  string
	Sunday   string
	Saturday string
	Holiday  string
}

// ColorSet holds the resolved color of each day category.
type ColorSet struct {
	Weekday  color.NRGBA
	Sunday   color.NRGBA
	Saturday color.NRGBA
	Holiday  color.NRGBA
}

// Secondary is the neutral tone of days outside the displayed month.
var Secondary = rgb(0x8E, 0x8E, 0x93)

var presets = map[Preset]ColorSet{
	Classic: {
		Weekday:  rgb(0x1C, 0x1C, 0x1E),
		Sunday:   rgb(0xFF, 0x3B, 0x30),
		Saturday: rgb(0x00, 0x7A, 0xFF),
		Holiday:  rgb(0xFF, 0x3B, 0x30),
	},
	Cool: {
		Weekday:  rgb(0x34, 0x49, 0x5E),
		Sunday:   rgb(0x5E, 0x5C, 0xE6),
		Saturday: rgb(0x0A, 0x84, 0xFF),
		Holiday:  rgb(0xBF, 0x5A, 0xF2),
	},
	Warm: {
		Weekday:  rgb(0x5D, 0x40, 0x37),
		Sunday:   rgb(0xE6, 0x4A, 0x19),
		Saturday: rgb(0xF5, 0x7C, 0x00),
		Holiday:  rgb(0xD3, 0x2F, 0x2F),
	},
	Mono: {
		Weekday:  rgb(0x3A, 0x3A, 0x3C),
		Sunday:   rgb(0x1C, 0x1C, 0x1E),
		Saturday: rgb(0x63, 0x63, 0x66),
		Holiday:  rgb(0x00, 0x00, 0x00),
	},
}

// classicDarkWeekday replaces the classic weekday color in dark mode.
var classicDarkWeekday = rgb(0xF2, 0xF2, 0xF7)

// Base returns the preset colors for appearance, without overrides.
func Base(p Preset, a Appearance) ColorSet {
	set, ok := presets[p]
	if !ok {
		set = presets[Classic]
		p = Classic
	}
	if p == Classic && a == Dark {
		set.Weekday = classicDarkWeekday
	}
	return set
}

// Resolve applies each valid override on top of the preset. Invalid or empty
// overrides leave that category at its preset color.
func Resolve(p Preset, o Overrides, a Appearance) ColorSet {
	set := Base(p, a)
	set.Weekday = overrideOr(o.Weekday, set.Weekday)
	set.Sunday = overrideOr(o.Sunday, set.Sunday)
	set.Saturday = overrideOr(o.Saturday, set.Saturday)
	set.Holiday = overrideOr(o.Holiday, set.Holiday)
	return set
}

func overrideOr(s string, fallback color.NRGBA) color.NRGBA {
	if c, ok := ParseHex(s); ok {
		return c
	}
	return fallback
}

// ParseHex parses "RRGGBB" or "RRGGBBAA", with or without a leading '#'.
func ParseHex(s string) (color.NRGBA, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{}, false
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return color.NRGBA{}, false
	}
	c := color.NRGBA{R: b[0], G: b[1], B: b[2], A: 0xFF}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, true
}

// Hex formats c as "#RRGGBB", or "#RRGGBBAA" when it is not opaque.
func Hex(c color.NRGBA) string {
	if c.A == 0xFF {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// HolidayChecker answers holiday membership for a date.
type HolidayChecker interface {
	IsHoliday(t time.Time) bool
}

// ForDay returns the color of a day cell. Days outside the displayed month
// use Secondary; holidays win over weekday colors; Sunday and Saturday follow
// date's weekday, not its column. A nil holidays means no holidays.
func (c ColorSet) ForDay(date time.Time, inMonth bool, holidays HolidayChecker) color.NRGBA {
	if !inMonth {
		return Secondary
	}
	if holidays != nil && holidays.IsHoliday(date) {
		return c.Holiday
	}
	return c.ForWeekday(date.Weekday())
}

// ForWeekday returns the color of a weekday ignoring holidays.
func (c ColorSet) ForWeekday(wd time.Weekday) color.NRGBA {
	switch wd {
	case time.Sunday:
		return c.Sunday
	case time.Saturday:
		return c.Saturday
	default:
		return c.Weekday
	}
}

func rgb(r, g, b uint8) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: 0xFF}
}
