package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// User is a member of the roster. Identity is ID.
type User struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// UsersDocument is the wire shape of the users resource.
type UsersDocument struct {
	Users []User `json:"users"`
}

// RawLayerEntry is one assignment record as delivered by the schedule
// resource. Empty date strings mean "missing".
type RawLayerEntry struct {
	UserID    int    `json:"userId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// LayerGroup is one base layer. On the wire it is either an object
// {"layers": [...]} or a bare array of entries; both decode the same way.
type LayerGroup struct {
	Entries []RawLayerEntry
}

func (g *LayerGroup) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &g.Entries)
	}
	var wrapped struct {
		Layers []RawLayerEntry `json:"layers"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return err
	}
	g.Entries = wrapped.Layers
	return nil
}

func (g LayerGroup) MarshalJSON() ([]byte, error) {
	entries := g.Entries
	if entries == nil {
		entries = []RawLayerEntry{}
	}
	return json.Marshal(struct {
		Layers []RawLayerEntry `json:"layers"`
	}{Layers: entries})
}

// ScheduleDocument is the raw layered schedule. Every container may be
// absent; a nil document behaves like an empty one.
type ScheduleDocument struct {
	Layers        []LayerGroup    `json:"layers"`
	OverrideLayer []RawLayerEntry `json:"overrideLayer"`
	FinalSchedule []RawLayerEntry `json:"finalSchedule"`
}

// Interval is a normalized, renderable assignment.
type Interval struct {
	// ID is unique across one normalized set: "{userId}-{startDate}-{source}".
	ID      string
	Content string

	Start time.Time
	End   time.Time

	// StartDate / EndDate keep the raw strings the interval was built from.
	StartDate string
	EndDate   string

	Group string
	// Color is the CSS color used to paint the bar.
	Color string
}

// Style is the inline CSS the browser widget applies to the item.
func (iv Interval) Style() string {
	return "background-color: " + iv.Color + "; border-radius: 4px;"
}

// Group is one timeline track.
type Group struct {
	ID    string
	Label string
}

// Window is the visible time range of a timeline host.
type Window struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Contains reports whether t lies in [Start, End].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Overlaps reports whether the half-open range [start, end) intersects the
// window.
func (w Window) Overlaps(start, end time.Time) bool {
	return end.After(w.Start) && !start.After(w.End)
}
