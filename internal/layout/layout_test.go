package layout_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"threemonthcal/internal/layout"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		size layout.Size
		want layout.SizeClass
	}{
		{layout.Size{Width: 170, Height: 170}, layout.Small},
		{layout.Size{Width: 0, Height: 0}, layout.Small},
		{layout.Size{Width: 364, Height: 100}, layout.Small},
		{layout.Size{Width: 364, Height: 170}, layout.Medium},
		{layout.Size{Width: 329, Height: 155}, layout.Medium},
		{layout.Size{Width: 364, Height: 382}, layout.Large},
		{layout.Size{Width: 220, Height: 520}, layout.Tall},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, layout.Classify(tt.size), "%+v", tt.size)
	}

	for _, class := range []layout.SizeClass{layout.Small, layout.Medium, layout.Large, layout.Tall} {
		assert.Equal(t, class, layout.Classify(layout.NominalSize(class)), class.String())
	}
}

func TestSelectUnsupportedForSmall(t *testing.T) {
	plan := layout.Select(layout.Input{Class: layout.Small, Rows: [3]int{5, 5, 5}})
	assert.Equal(t, layout.Unsupported, plan.Arrangement)
	assert.Equal(t, layout.Slot{}, plan.Slots[1])
}

func TestMediumSixRowsGetsLargerRatio(t *testing.T) {
	five := layout.Select(layout.Input{Class: layout.Medium, Rows: [3]int{5, 5, 5}, DominantIsCurrent: true})
	six := layout.Select(layout.Input{Class: layout.Medium, Rows: [3]int{5, 6, 5}, DominantIsCurrent: true})

	assert.Equal(t, layout.DominantTop, five.Arrangement)
	assert.InDelta(t, 0.60, five.Ratio, 1e-9)
	assert.GreaterOrEqual(t, six.Ratio, 0.64)
	assert.Greater(t, six.Slots[1].Frame.Height, five.Slots[1].Frame.Height)

	// Emphasis only applies to the largest class.
	assert.False(t, six.Slots[1].Emphasized)
	assert.InDelta(t, 0.64, six.Ratio, 1e-9)
}

func TestDominantRatioBounds(t *testing.T) {
	for rows := 0; rows <= 8; rows++ {
		for _, emph := range []bool{false, true} {
			r := layout.DominantRatio(rows, emph)
			assert.GreaterOrEqual(t, r, layout.BaseDominantRatio)
			assert.LessOrEqual(t, r, layout.MaxDominantRatio)
		}
	}
	assert.InDelta(t, 0.68, layout.DominantRatio(6, true), 1e-9)
	assert.InDelta(t, 0.60, layout.DominantRatio(5, true), 1e-9)
}

func TestDominantTopGeometry(t *testing.T) {
	size := layout.Size{Width: 364, Height: 382}
	plan := layout.Select(layout.Input{Class: layout.Large, Size: size, Rows: [3]int{5, 5, 6}, DominantIsCurrent: true})

	dom, prev, next := plan.Slots[1], plan.Slots[0], plan.Slots[2]
	assert.True(t, dom.Dominant)
	assert.True(t, dom.Emphasized)
	assert.False(t, prev.Dominant)

	// Secondaries sit below the dominant month, side by side, same size.
	assert.Greater(t, prev.Frame.Y, dom.Frame.Y+dom.Frame.Height)
	assert.Equal(t, prev.Frame.Y, next.Frame.Y)
	assert.Greater(t, next.Frame.X, prev.Frame.X+prev.Frame.Width)
	assert.Equal(t, prev.Frame.Width, next.Frame.Width)
	assert.LessOrEqual(t, next.Frame.X+next.Frame.Width, size.Width)
	assert.LessOrEqual(t, prev.Frame.Y+prev.Frame.Height, size.Height)

	// Ratio of dominant height to the shared height.
	shared := dom.Frame.Height + prev.Frame.Height
	assert.InDelta(t, plan.Ratio, dom.Frame.Height/shared, 1e-9)

	// Emphasized primary is larger than the plain primary, secondaries smaller.
	primary := layout.PrimaryStyle(layout.Large)
	assert.Greater(t, dom.Style.DaySize, primary.DaySize)
	assert.Less(t, prev.Style.DaySize, primary.DaySize)
	assert.Equal(t, 6, next.Rows)
}

func TestLargeNotCurrentIsNotEmphasized(t *testing.T) {
	plan := layout.Select(layout.Input{Class: layout.Large, Rows: [3]int{5, 6, 5}})
	assert.False(t, plan.Slots[1].Emphasized)
	assert.Equal(t, layout.PrimaryStyle(layout.Large).DaySize, plan.Slots[1].Style.DaySize)
	assert.InDelta(t, 0.64, plan.Ratio, 1e-9)
}

func TestStackedUniform(t *testing.T) {
	plan := layout.Select(layout.Input{Class: layout.Tall, Rows: [3]int{4, 5, 6}})
	assert.Equal(t, layout.Stacked, plan.Arrangement)

	for i := 1; i < 3; i++ {
		assert.Equal(t, plan.Slots[0].Frame.Height, plan.Slots[i].Frame.Height)
		assert.Greater(t, plan.Slots[i].Frame.Y, plan.Slots[i-1].Frame.Y)
		assert.Equal(t, plan.Slots[0].Style.DaySize, plan.Slots[i].Style.DaySize)
	}
	assert.Less(t, plan.Slots[1].Style.DaySize, layout.PrimaryStyle(layout.Tall).DaySize)
}

func TestCompactFloor(t *testing.T) {
	s := layout.Compact(layout.Style{TitleSize: 8, WeekdaySize: 7, DaySize: 7.5, Spacing: 1})
	assert.Equal(t, layout.MinFontSize, s.TitleSize)
	assert.Equal(t, layout.MinFontSize, s.WeekdaySize)
	assert.Equal(t, layout.MinFontSize, s.DaySize)
	assert.Equal(t, layout.MinSpacing, s.Spacing)
}

func TestTitleDroppedWhenCramped(t *testing.T) {
	roomy := layout.Select(layout.Input{Class: layout.Large, Rows: [3]int{5, 5, 5}})
	assert.True(t, roomy.Slots[1].Style.ShowTitle)

	cramped := layout.Select(layout.Input{Class: layout.Medium, Size: layout.Size{Width: 364, Height: 150}, Rows: [3]int{6, 6, 6}})
	assert.False(t, cramped.Slots[0].Style.ShowTitle)
	for _, slot := range cramped.Slots {
		assert.GreaterOrEqual(t, slot.Style.CellHeight, 0.0)
	}
}

func TestSelectIsDeterministic(t *testing.T) {
	in := layout.Input{Class: layout.Large, Size: layout.Size{Width: 400, Height: 420}, Rows: [3]int{6, 5, 4}, DominantIsCurrent: true}
	assert.Equal(t, layout.Select(in), layout.Select(in))
}

func TestParseSize(t *testing.T) {
	s, ok := layout.ParseSize("364x170")
	assert.True(t, ok)
	assert.Equal(t, layout.Size{Width: 364, Height: 170}, s)

	for _, bad := range []string{"", "364", "x170", "0x10", "-1x5", "axb"} {
		_, ok := layout.ParseSize(bad)
		assert.False(t, ok, bad)
	}

	c, ok := layout.ParseSizeClass("Large")
	assert.True(t, ok)
	assert.Equal(t, layout.Large, c)
}
