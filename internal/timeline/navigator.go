package timeline

import (
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	appLog "schedview/internal/log"
	"schedview/internal/model"
)

// Control identifies the highlighted button: one of the navigation commands
// or a granularity.
type Control string

const (
	ControlToday    Control = "today"
	ControlPrevious Control = "previous"
	ControlNext     Control = "next"
)

// GranularityControl is the selector button of g.
func GranularityControl(g Granularity) Control { return Control(g) }

// AnchorMode decides where a granularity change lands.
type AnchorMode int

const (
	// AnchorFixed shows the window containing the configured anchor date.
	AnchorFixed AnchorMode = iota
	// AnchorToday shows the window containing now.
	AnchorToday
)

var ErrUnknownAnchorMode = errors.New("unknown anchor mode")

func (m AnchorMode) String() string {
	if m == AnchorToday {
		return "today"
	}
	return "fixed"
}

func ParseAnchorMode(s string) (AnchorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return AnchorToday, nil
	case "fixed", "anchor":
		return AnchorFixed, nil
	}
	return AnchorFixed, goerr.Wrap(ErrUnknownAnchorMode, "cannot parse anchor mode", goerr.V("value", s))
}

// NavState is a snapshot of the navigator.
type NavState struct {
	Window      model.Window
	Granularity Granularity
	Selected    Control
	Mounted     bool
}

// Navigator moves the visible window of a Host. Every command is a no-op
// returning false until a host is attached.
//
// A Navigator is not safe for concurrent use.
type Navigator struct {
	host        Host
	clock       Clock
	cal         Calendar
	anchor      time.Time
	granularity Granularity
	selected    Control
}

// NewNavigator starts in month granularity with the month button selected.
func NewNavigator(cal Calendar, clock Clock, anchor time.Time) *Navigator {
	if clock == nil {
		clock = RealClock{}
	}
	return &Navigator{
		clock:       clock,
		cal:         cal,
		anchor:      anchor,
		granularity: GranularityMonth,
		selected:    GranularityControl(GranularityMonth),
	}
}

// WithGranularity changes the starting granularity and selection. Call it
// before Attach.
func (n *Navigator) WithGranularity(g Granularity) *Navigator {
	if g.Valid() {
		n.granularity = g
		n.selected = GranularityControl(g)
	}
	return n
}

// Attach binds the mounted host.
func (n *Navigator) Attach(h Host) { n.host = h }

func (n *Navigator) Mounted() bool { return n.host != nil }

func (n *Navigator) Granularity() Granularity { return n.granularity }

func (n *Navigator) Selected() Control { return n.selected }

// AnchorMode derives the anchor for the next granularity change from the
// current selection.
func (n *Navigator) AnchorMode() AnchorMode {
	if n.selected == ControlToday {
		return AnchorToday
	}
	return AnchorFixed
}

func (n *Navigator) State() NavState {
	st := NavState{
		Granularity: n.granularity,
		Selected:    n.selected,
		Mounted:     n.host != nil,
	}
	if n.host != nil {
		st.Window = n.host.Window()
	}
	return st
}

// Today recenters the window on now without resizing it.
func (n *Navigator) Today() bool {
	if n.host == nil {
		return false
	}
	n.host.MoveTo(n.clock.Now())
	n.selected = ControlToday
	return true
}

// Next shows the window right after the current one.
func (n *Navigator) Next() bool {
	if n.host == nil {
		return false
	}
	start, end := n.cal.Following(n.host.Window().End, n.granularity)
	n.host.SetWindow(start, end)
	n.selected = ControlNext
	appLog.Debug("navigate next", "start", start, "end", end)
	return true
}

// Previous shows the window right before the current one.
func (n *Navigator) Previous() bool {
	if n.host == nil {
		return false
	}
	start, end := n.cal.Preceding(n.host.Window().Start, n.granularity)
	n.host.SetWindow(start, end)
	n.selected = ControlPrevious
	appLog.Debug("navigate previous", "start", start, "end", end)
	return true
}

// ChangeGranularity switches to g and resets the window around now or the
// anchor date depending on mode.
func (n *Navigator) ChangeGranularity(g Granularity, mode AnchorMode) bool {
	if n.host == nil || !g.Valid() {
		return false
	}
	var start, end time.Time
	if mode == AnchorToday {
		start, end = n.cal.Span(n.clock.Now(), g)
		n.selected = ControlToday
	} else {
		start, end = n.cal.Span(n.anchor, g)
		n.selected = GranularityControl(g)
	}
	n.host.SetWindow(start, end)
	n.granularity = g
	appLog.Debug("granularity changed", "granularity", string(g), "anchor", mode.String())
	return true
}
