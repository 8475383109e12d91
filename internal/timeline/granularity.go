package timeline

import (
	"errors"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Granularity is the navigation step and window size.
type Granularity string

const (
	GranularityDay     Granularity = "day"
	GranularityTwoDay  Granularity = "2-day"
	GranularityWeek    Granularity = "week"
	GranularityTwoWeek Granularity = "2-week"
	GranularityMonth   Granularity = "month"
)

var ErrUnknownGranularity = errors.New("unknown granularity")

// Granularities lists the selector options in display order.
var Granularities = []Granularity{
	GranularityDay,
	GranularityTwoDay,
	GranularityWeek,
	GranularityTwoWeek,
	GranularityMonth,
}

// ParseGranularity accepts the canonical values ("2-week") as well as the
// labels shown on the selector ("2 Weeks").
func ParseGranularity(s string) (Granularity, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, g := range Granularities {
		if key == string(g) || key == strings.ToLower(g.Label()) {
			return g, nil
		}
	}
	return "", goerr.Wrap(ErrUnknownGranularity, "cannot parse granularity", goerr.V("value", s))
}

// Label is the text of the selector button.
func (g Granularity) Label() string {
	switch g {
	case GranularityDay:
		return "1 Day"
	case GranularityTwoDay:
		return "2 Days"
	case GranularityWeek:
		return "1 Week"
	case GranularityTwoWeek:
		return "2 Weeks"
	case GranularityMonth:
		return "Month"
	default:
		return string(g)
	}
}

func (g Granularity) Valid() bool {
	switch g {
	case GranularityDay, GranularityTwoDay, GranularityWeek, GranularityTwoWeek, GranularityMonth:
		return true
	}
	return false
}

type unit int

const (
	unitDay unit = iota
	unitWeek
	unitMonth
)

// base splits g into its calendar unit and the number of units one window
// spans.
func (g Granularity) base() (unit, int) {
	switch g {
	case GranularityDay:
		return unitDay, 1
	case GranularityTwoDay:
		return unitDay, 2
	case GranularityWeek:
		return unitWeek, 1
	case GranularityTwoWeek:
		return unitWeek, 2
	default:
		return unitMonth, 1
	}
}

// Calendar aligns instants to granularity boundaries in a fixed zone.
type Calendar struct {
	Location  *time.Location
	WeekStart time.Weekday
}

// NewCalendar builds a Calendar from the config week_start value
// ("sunday" or "monday").
func NewCalendar(loc *time.Location, weekStart string) Calendar {
	c := Calendar{Location: loc, WeekStart: time.Sunday}
	if strings.EqualFold(weekStart, "monday") {
		c.WeekStart = time.Monday
	}
	return c
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

func (c Calendar) truncate(t time.Time, u unit) time.Time {
	t = t.In(c.loc())
	y, m, d := t.Date()
	switch u {
	case unitWeek:
		back := (int(t.Weekday()) - int(c.WeekStart) + 7) % 7
		return time.Date(y, m, d-back, 0, 0, 0, 0, c.loc())
	case unitMonth:
		return time.Date(y, m, 1, 0, 0, 0, 0, c.loc())
	default:
		return time.Date(y, m, d, 0, 0, 0, 0, c.loc())
	}
}

// add moves an aligned instant by n units. Only call it on values returned by
// truncate so month arithmetic never normalizes past a month end.
func (c Calendar) add(t time.Time, u unit, n int) time.Time {
	switch u {
	case unitWeek:
		return t.AddDate(0, 0, 7*n)
	case unitMonth:
		return t.AddDate(0, n, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}

// StartOf returns the first instant of the g-window containing t.
func (c Calendar) StartOf(t time.Time, g Granularity) time.Time {
	u, _ := g.base()
	return c.truncate(t, u)
}

// EndOf returns the last millisecond of the g-window starting at StartOf(t, g).
// 2-day and 2-week windows span two units from that start.
func (c Calendar) EndOf(t time.Time, g Granularity) time.Time {
	u, n := g.base()
	return c.add(c.truncate(t, u), u, n).Add(-time.Millisecond)
}

// Span returns [StartOf(t, g), EndOf(t, g)].
func (c Calendar) Span(t time.Time, g Granularity) (time.Time, time.Time) {
	return c.StartOf(t, g), c.EndOf(t, g)
}

// Following returns the window right after the one ending at end.
func (c Calendar) Following(end time.Time, g Granularity) (time.Time, time.Time) {
	u, _ := g.base()
	start := c.add(c.truncate(end, u), u, 1)
	return start, c.EndOf(start, g)
}

// Preceding returns the window right before the one starting at start.
func (c Calendar) Preceding(start time.Time, g Granularity) (time.Time, time.Time) {
	u, n := g.base()
	s := c.add(c.truncate(start, u), u, -n)
	return s, c.EndOf(s, g)
}
