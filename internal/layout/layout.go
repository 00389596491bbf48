// Package layout picks how the three months are arranged in the available
// frame and how large their text is.
package layout

import (
	"math"
	"strconv"
	"strings"
)

// SizeClass is the coarse bucket of the available frame.
type SizeClass int

const (
	Small SizeClass = iota
	Medium
	Large
	Tall
)

func (c SizeClass) String() string {
	switch c {
	case Medium:
		return "medium"
	case Large:
		return "large"
	case Tall:
		return "tall"
	default:
		return "small"
	}
}

// ParseSizeClass maps a class name to a SizeClass.
func ParseSizeClass(s string) (SizeClass, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "small":
		return Small, true
	case "medium":
		return Medium, true
	case "large":
		return Large, true
	case "tall":
		return Tall, true
	default:
		return Small, false
	}
}

// Arrangement identifies how the months are placed.
type Arrangement int

const (
	// Unsupported means the frame is too small to show a calendar.
	Unsupported Arrangement = iota
	// DominantTop shows the current month on top and the previous and next
	// months side by side below it.
	DominantTop
	// Stacked shows the three months on top of each other at one scale.
	Stacked
)

func (a Arrangement) String() string {
	switch a {
	case DominantTop:
		return "dominant-top"
	case Stacked:
		return "stacked"
	default:
		return "unsupported"
	}
}

// MarshalText lets render plans carry the arrangement by name.
func (a Arrangement) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// Size is an available frame in points.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ParseSize parses "WxH", e.g. "364x170".
func ParseSize(s string) (Size, bool) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Size{}, false
	}
	width, err := strconv.ParseFloat(w, 64)
	if err != nil || width <= 0 {
		return Size{}, false
	}
	height, err := strconv.ParseFloat(h, 64)
	if err != nil || height <= 0 {
		return Size{}, false
	}
	return Size{Width: width, Height: height}, true
}

// Rect is a frame inside the available size, origin top-left.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Classification thresholds, in points. Tunable for other hosts.
const (
	MinWidth       = 200.0
	MinHeight      = 140.0
	LargeMinHeight = 300.0
	TallAspect     = 1.6
)

// Nominal frames for each class, used when a caller only knows the class.
var nominalSizes = map[SizeClass]Size{
	Small:  {Width: 170, Height: 170},
	Medium: {Width: 364, Height: 170},
	Large:  {Width: 364, Height: 382},
	Tall:   {Width: 220, Height: 520},
}

// NominalSize returns the typical frame of class.
func NominalSize(class SizeClass) Size {
	return nominalSizes[class]
}

// Classify buckets a frame. Frames narrower than MinWidth or shorter than
// MinHeight are Small; portrait frames at least LargeMinHeight tall are Tall;
// other frames at least LargeMinHeight tall are Large; the rest is Medium.
func Classify(s Size) SizeClass {
	switch {
	case s.Width < MinWidth || s.Height < MinHeight:
		return Small
	case s.Height >= LargeMinHeight && s.Height >= TallAspect*s.Width:
		return Tall
	case s.Height >= LargeMinHeight:
		return Large
	default:
		return Medium
	}
}

// Style sizes the text and spacing of one month.
type Style struct {
	TitleSize   float64 `json:"title_size"`
	WeekdaySize float64 `json:"weekday_size"`
	DaySize     float64 `json:"day_size"`
	Spacing     float64 `json:"spacing"`
	CellHeight  float64 `json:"cell_height"`
	ShowTitle   bool    `json:"show_title"`
}

// Font and spacing bounds.
const (
	MinFontSize = 7.0
	MinSpacing  = 1.0

	secondaryTitleStep   = 2.0
	secondaryWeekdayStep = 1.0
	secondaryDayStep     = 2.0
	secondarySpacingStep = 1.0

	emphasisScale = 1.15

	// lineFactor converts a font size into a line height.
	lineFactor = 1.3

	framePadding = 6.0
)

var primaryStyles = map[SizeClass]Style{
	Medium: {TitleSize: 11, WeekdaySize: 8, DaySize: 10, Spacing: 2},
	Large:  {TitleSize: 14, WeekdaySize: 10, DaySize: 13, Spacing: 3},
	Tall:   {TitleSize: 12, WeekdaySize: 9, DaySize: 11, Spacing: 2},
}

var slotGaps = map[SizeClass]float64{
	Medium: 6,
	Large:  8,
	Tall:   6,
}

// PrimaryStyle returns the unscaled style of the dominant month for class.
func PrimaryStyle(class SizeClass) Style {
	return primaryStyles[class]
}

// Compact shrinks s by the fixed secondary decrements, never below
// MinFontSize / MinSpacing.
func Compact(s Style) Style {
	s.TitleSize = math.Max(MinFontSize, s.TitleSize-secondaryTitleStep)
	s.WeekdaySize = math.Max(MinFontSize, s.WeekdaySize-secondaryWeekdayStep)
	s.DaySize = math.Max(MinFontSize, s.DaySize-secondaryDayStep)
	s.Spacing = math.Max(MinSpacing, s.Spacing-secondarySpacingStep)
	return s
}

func emphasize(s Style) Style {
	s.TitleSize *= emphasisScale
	s.WeekdaySize *= emphasisScale
	s.DaySize *= emphasisScale
	return s
}

// Dominant height ratio bounds.
const (
	BaseDominantRatio = 0.60
	MaxDominantRatio  = 0.68
	sixthRowStep      = 0.04
)

// DominantRatio is the share of the height given to the dominant month. A
// sixth week row earns more room, and more again when the month is
// emphasized.
func DominantRatio(rows int, emphasized bool) float64 {
	r := BaseDominantRatio
	if rows >= 6 {
		r += sixthRowStep
		if emphasized {
			r += sixthRowStep
		}
	}
	return math.Min(MaxDominantRatio, r)
}

// Slot is the placement of one month.
type Slot struct {
	Frame      Rect  `json:"frame"`
	Style      Style `json:"style"`
	Rows       int   `json:"rows"`
	Dominant   bool  `json:"dominant"`
	Emphasized bool  `json:"emphasized"`
}

// Input is everything the selector looks at.
type Input struct {
	Class SizeClass
	// Size is the frame the slots are laid out in. If zero, the nominal size
	// of Class is used.
	Size Size
	// Rows are the occupied week rows of the previous, current and next
	// month.
	Rows [3]int
	// DominantIsCurrent reports whether the middle month is the month the
	// calendar is currently in.
	DominantIsCurrent bool
}

// Plan is the chosen arrangement. Slots are in month order: previous,
// current, next.
type Plan struct {
	Class       SizeClass   `json:"-"`
	Arrangement Arrangement `json:"arrangement"`
	Size        Size        `json:"size"`
	Ratio       float64     `json:"ratio,omitempty"`
	Slots       [3]Slot     `json:"slots"`
}

// Select picks the arrangement and styles. It depends only on in.
func Select(in Input) Plan {
	size := in.Size
	if size.Width <= 0 || size.Height <= 0 {
		size = NominalSize(in.Class)
	}
	plan := Plan{Class: in.Class, Size: size}

	switch in.Class {
	case Medium, Large:
		plan.Arrangement = DominantTop
		selectDominantTop(&plan, in)
	case Tall:
		plan.Arrangement = Stacked
		selectStacked(&plan, in)
	default:
		plan.Arrangement = Unsupported
	}
	return plan
}

func selectDominantTop(plan *Plan, in Input) {
	gap := slotGaps[in.Class]
	inner := innerRect(plan.Size)

	emphasized := in.Class == Large && in.DominantIsCurrent
	plan.Ratio = DominantRatio(in.Rows[1], emphasized)

	avail := math.Max(0, inner.Height-gap)
	dominantH := avail * plan.Ratio
	secondaryH := avail - dominantH
	secondaryW := math.Max(0, (inner.Width-gap)/2)
	secondaryY := inner.Y + dominantH + gap

	primary := PrimaryStyle(in.Class)
	if emphasized {
		primary = emphasize(primary)
	}
	secondary := Compact(PrimaryStyle(in.Class))

	plan.Slots[1] = newSlot(Rect{X: inner.X, Y: inner.Y, Width: inner.Width, Height: dominantH}, primary, in.Rows[1])
	plan.Slots[1].Dominant = true
	plan.Slots[1].Emphasized = emphasized

	plan.Slots[0] = newSlot(Rect{X: inner.X, Y: secondaryY, Width: secondaryW, Height: secondaryH}, secondary, in.Rows[0])
	plan.Slots[2] = newSlot(Rect{X: inner.X + secondaryW + gap, Y: secondaryY, Width: secondaryW, Height: secondaryH}, secondary, in.Rows[2])
}

func selectStacked(plan *Plan, in Input) {
	gap := slotGaps[in.Class]
	inner := innerRect(plan.Size)

	h := math.Max(0, (inner.Height-2*gap)/3)
	style := Compact(PrimaryStyle(in.Class))

	for i := range plan.Slots {
		frame := Rect{X: inner.X, Y: inner.Y + float64(i)*(h+gap), Width: inner.Width, Height: h}
		plan.Slots[i] = newSlot(frame, style, in.Rows[i])
	}
}

func innerRect(s Size) Rect {
	return Rect{
		X:      framePadding,
		Y:      framePadding,
		Width:  math.Max(0, s.Width-2*framePadding),
		Height: math.Max(0, s.Height-2*framePadding),
	}
}

// newSlot fits rows week rows into frame. The title is dropped when keeping
// it would squeeze cells below the day font size.
func newSlot(frame Rect, style Style, rows int) Slot {
	if rows <= 0 {
		rows = 1
	}
	style.ShowTitle = true
	style.CellHeight = cellHeight(frame, style, rows)
	if style.CellHeight < style.DaySize {
		style.ShowTitle = false
		style.CellHeight = cellHeight(frame, style, rows)
	}
	return Slot{Frame: frame, Style: style, Rows: rows}
}

func cellHeight(frame Rect, style Style, rows int) float64 {
	used := style.WeekdaySize*lineFactor + style.Spacing
	if style.ShowTitle {
		used += style.TitleSize*lineFactor + style.Spacing
	}
	used += float64(rows-1) * style.Spacing
	return math.Max(0, (frame.Height-used)/float64(rows))
}
