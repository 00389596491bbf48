// Package term draws a render plan as text for terminals, using each cell's
// resolved color.
package term

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"threemonthcal/internal/grid"
	"threemonthcal/internal/layout"
	"threemonthcal/internal/render"
)

const (
	cellWidth  = 2
	blockWidth = grid.Columns*cellWidth + grid.Columns - 1
	blockGap   = "   "
)

// UnsupportedMessage is shown in place of a calendar the frame cannot hold.
const UnsupportedMessage = "Calendar needs a larger frame"

// Printer renders plans with a lipgloss renderer bound to an output, so
// color support follows that output.
type Printer struct {
	title    lipgloss.Style
	dominant lipgloss.Style
	header   lipgloss.Style
	day      lipgloss.Style
	banner   lipgloss.Style
	frame    lipgloss.Style
}

// NewPrinter returns a Printer for w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		title: r.NewStyle().
			Width(blockWidth).
			Align(lipgloss.Center),
		dominant: r.NewStyle().
			Bold(true).
			Width(blockWidth).
			Align(lipgloss.Center),
		header: r.NewStyle().
			Width(cellWidth).
			Align(lipgloss.Right),
		day: r.NewStyle().
			Width(cellWidth).
			Align(lipgloss.Right),
		banner: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF3B30")).
			Padding(0, 1),
		frame: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1),
	}
}

// Render returns plan as a block of text.
func (p *Printer) Render(plan render.Plan) string {
	var body string
	switch plan.Arrangement {
	case layout.DominantTop:
		prev := p.month(plan.Months[0])
		cur := p.month(plan.Months[1])
		next := p.month(plan.Months[2])
		body = lipgloss.JoinVertical(lipgloss.Center,
			cur,
			"",
			lipgloss.JoinHorizontal(lipgloss.Top, prev, blockGap, next),
		)
	case layout.Stacked:
		parts := make([]string, 0, len(plan.Months)*2)
		for i, m := range plan.Months {
			if i > 0 {
				parts = append(parts, "")
			}
			parts = append(parts, p.month(m))
		}
		body = lipgloss.JoinVertical(lipgloss.Left, parts...)
	default:
		body = UnsupportedMessage
	}

	if plan.Error != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, p.banner.Render(plan.Error), body)
	}
	return body
}

// Fprint writes the rendered plan and a trailing newline to w.
func (p *Printer) Fprint(w io.Writer, plan render.Plan) error {
	_, err := io.WriteString(w, p.Render(plan)+"\n")
	return err
}

// month draws one month: title, weekday header and the occupied rows only.
func (p *Printer) month(m render.Month) string {
	lines := make([]string, 0, 2+grid.Rows)

	titleStyle := p.title
	if m.Slot.Dominant {
		titleStyle = p.dominant
	}
	if m.Slot.Style.ShowTitle {
		lines = append(lines, titleStyle.Render(m.Title))
	}

	cells := make([]string, grid.Columns)
	for i, wd := range m.Weekdays {
		cells[i] = p.header.Foreground(lipgloss.Color(wd.Color)).Render(clip(wd.Label, cellWidth))
	}
	lines = append(lines, strings.Join(cells, " "))

	rows := m.Slot.Rows
	if rows <= 0 || rows > grid.Rows {
		rows = grid.Rows
	}
	for r := 0; r < rows; r++ {
		for c := 0; c < grid.Columns; c++ {
			d := m.Days[r*grid.Columns+c]
			st := p.day.Foreground(lipgloss.Color(d.Color))
			if d.Today {
				st = st.Reverse(true)
			}
			if d.Holiday {
				st = st.Underline(true)
			}
			cells[c] = st.Render(d.Label)
		}
		lines = append(lines, strings.Join(cells, " "))
	}

	block := strings.Join(lines, "\n")
	if m.Slot.Emphasized {
		return p.frame.Render(block)
	}
	return block
}

// clip shortens s to at most n runes.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
