package timeline

import (
	"time"

	"schedview/internal/model"
)

// Host is a mounted timeline widget. Implementations render the dataset and
// own the visible window; the navigator only drives it through this surface.
type Host interface {
	Window() model.Window
	SetWindow(start, end time.Time)
	// MoveTo recenters the window on t, keeping its duration.
	MoveTo(t time.Time)
}

// Options configure a host at mount time.
type Options struct {
	Start    time.Time
	End      time.Time
	Editable bool
	Stack    bool
}

// DefaultOptions returns a read-only, non-stacking configuration showing
// [start, end].
func DefaultOptions(start, end time.Time) Options {
	return Options{
		Start:    start,
		End:      end,
		Editable: false,
		Stack:    false,
	}
}

// Widget is the in-memory Host used by the web sessions and the terminal UI.
type Widget struct {
	items   []model.Interval
	groups  []model.Group
	options Options
	window  model.Window
}

// NewWidget mounts ds with opts. Groups are kept in GroupOrder.
func NewWidget(ds Dataset, opts Options) *Widget {
	groups := append([]model.Group(nil), ds.Groups...)
	SortGroups(groups)
	return &Widget{
		items:   ds.Items,
		groups:  groups,
		options: opts,
		window:  model.Window{Start: opts.Start, End: opts.End},
	}
}

func (w *Widget) Window() model.Window { return w.window }

func (w *Widget) SetWindow(start, end time.Time) {
	w.window = model.Window{Start: start, End: end}
}

func (w *Widget) MoveTo(t time.Time) {
	d := w.window.Duration()
	start := t.Add(-d / 2)
	w.window = model.Window{Start: start, End: start.Add(d)}
}

func (w *Widget) Options() Options { return w.options }

func (w *Widget) Groups() []model.Group { return w.groups }

func (w *Widget) Items() []model.Interval { return w.items }

// Visible returns the items of group that intersect the current window, in
// dataset order. An empty group id matches every group.
func (w *Widget) Visible(group string) []model.Interval {
	var out []model.Interval
	for _, iv := range w.items {
		if group != "" && iv.Group != group {
			continue
		}
		if w.window.Overlaps(iv.Start, iv.End) {
			out = append(out, iv)
		}
	}
	return out
}

var _ Host = (*Widget)(nil)
