package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"schedview/internal/model"
	"schedview/internal/timeline"
)

const (
	labelWidth   = 16
	defaultWidth = 100
	minTrack     = 10
)

var (
	buttonStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	selectedStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).
			Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#1677ff"))
	headerStyle = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Width(labelWidth).MaxWidth(labelWidth)
	axisStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

func (m *Model) View() string {
	if m.widget == nil {
		switch m.stage.State() {
		case timeline.StateReady:
			return statusStyle.Render("No users loaded.") + "\n\n" + m.help.View(m.keys)
		default:
			return statusStyle.Render("Loading Charts...") + "\n"
		}
	}

	var b strings.Builder
	b.WriteString(m.renderToolbar())
	b.WriteString("\n\n")

	win := m.widget.Window()
	loc := m.env.Location
	b.WriteString(headerStyle.Render(win.Start.In(loc).Format("Jan 2, 2006 15:04") + "  →  " + win.End.In(loc).Format("Jan 2, 2006 15:04")))
	b.WriteString("\n")
	b.WriteString(m.renderAxis(win))
	b.WriteString("\n")

	for _, g := range m.widget.Groups() {
		label := labelStyle.Render(truncate(g.Label, labelWidth-1))
		if g.ID == timeline.GroupLayers {
			b.WriteString(headerStyle.Render(label))
			b.WriteString("\n")
			continue
		}
		b.WriteString(label)
		b.WriteString(renderTrack(m.widget.Visible(g.ID), win, m.trackWidth()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) trackWidth() int {
	w := m.width
	if w <= 0 {
		w = defaultWidth
	}
	w -= labelWidth
	if w < minTrack {
		w = minTrack
	}
	return w
}

func (m *Model) renderToolbar() string {
	selected := m.nav.Selected()
	render := func(id timeline.Control, label string) string {
		if id == selected {
			return selectedStyle.Render(label)
		}
		return buttonStyle.Render(label)
	}

	parts := []string{
		render(timeline.ControlToday, "Today"),
		render(timeline.ControlPrevious, "Previous"),
		render(timeline.ControlNext, "Next"),
		"  ",
	}
	for _, g := range timeline.Granularities {
		parts = append(parts, render(timeline.GranularityControl(g), g.Label()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderAxis(win model.Window) string {
	width := m.trackWidth()
	ticks, err := m.env.Calendar.Ticks(win, m.nav.Granularity())
	if err != nil || len(ticks) == 0 {
		return strings.Repeat(" ", labelWidth)
	}

	line := []rune(strings.Repeat(" ", width))
	next := 0
	for _, tk := range ticks {
		col := column(tk.Time, win, width)
		if col < next || col >= width {
			continue
		}
		for i, r := range []rune(tk.Label) {
			if col+i >= width {
				break
			}
			line[col+i] = r
		}
		next = col + len([]rune(tk.Label)) + 1
	}
	return strings.Repeat(" ", labelWidth) + axisStyle.Render(string(line))
}

// column maps t to a track column in [0, width].
func column(t time.Time, win model.Window, width int) int {
	d := win.Duration()
	if d <= 0 {
		return 0
	}
	c := int(float64(t.Sub(win.Start)) / float64(d) * float64(width))
	if c < 0 {
		return 0
	}
	if c > width {
		return width
	}
	return c
}

// renderTrack paints items as bars colored by Interval.Color. Later items
// overwrite earlier ones where they overlap.
func renderTrack(items []model.Interval, win model.Window, width int) string {
	cells := []rune(strings.Repeat(" ", width))
	colors := make([]string, width)

	for _, iv := range items {
		from := column(iv.Start, win, width)
		to := column(iv.End, win, width)
		if to <= from {
			to = from + 1
		}
		if to > width {
			to = width
		}
		if from >= width {
			continue
		}
		text := []rune(truncate(iv.Content, to-from))
		for c := from; c < to; c++ {
			colors[c] = iv.Color
			cells[c] = ' '
			if i := c - from; i < len(text) {
				cells[c] = text[i]
			}
		}
	}

	var b strings.Builder
	for start := 0; start < width; {
		end := start + 1
		for end < width && colors[end] == colors[start] {
			end++
		}
		seg := string(cells[start:end])
		if colors[start] == "" {
			b.WriteString(seg)
		} else {
			b.WriteString(lipgloss.NewStyle().
				Background(lipgloss.Color(colors[start])).
				Foreground(lipgloss.Color("#000000")).
				Render(seg))
		}
		start = end
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}
