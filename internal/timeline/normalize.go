package timeline

import (
	"strconv"
	"strings"
	"time"

	appLog "schedview/internal/log"
	"schedview/internal/model"
)

// Fixed group identifiers. Layer groups are "Layer 1", "Layer 2", ...
const (
	GroupLayers   = "Layers"
	GroupOverride = "Override Layer"
	GroupFinal    = "Final Schedule"
)

const (
	discOverride = "override"
	discFinal    = "final"
)

// ColorTable maps user ids to bar colors, with per-source fallbacks for
// users that have no configured color.
type ColorTable struct {
	Users    map[int]string
	Layer    string
	Override string
	Final    string
}

// DefaultColorTable mirrors the built-in config colors.
func DefaultColorTable() ColorTable {
	return ColorTable{
		Users: map[int]string{
			23: "#FFBF00",
			24: "#93C572",
			27: "#FF5733",
		},
		Layer:    "#e6f7ff",
		Override: "#FFBF00",
		Final:    "#ccffcc",
	}
}

func (c ColorTable) lookup(userID int, fallback string) string {
	if color, ok := c.Users[userID]; ok && color != "" {
		return color
	}
	return fallback
}

// Dataset is the normalized input of a timeline host.
type Dataset struct {
	Items  []model.Interval
	Groups []model.Group
}

// Empty reports whether there is nothing to mount.
func (d Dataset) Empty() bool {
	return len(d.Items) == 0 && len(d.Groups) == 0
}

// LayerGroupID returns the group id of the layer at the 0-based index.
func LayerGroupID(index int) string {
	return "Layer " + strconv.Itoa(index+1)
}

// Normalize flattens users and a raw schedule document into renderable
// intervals and the ordered group list.
//
// Entries without a start date, without an end date, with dates that do not
// parse, or whose user id is unknown are skipped. Item order follows the
// document: layers by index, then the override layer, then the final
// schedule. The group list is independent of the items: the "Layers" header,
// one group per layer (even empty ones), "Override Layer", "Final Schedule".
//
// With no users the result is empty and the host must not mount.
func Normalize(users []model.User, doc *model.ScheduleDocument, colors ColorTable, loc *time.Location) Dataset {
	if len(users) == 0 {
		return Dataset{Items: []model.Interval{}, Groups: []model.Group{}}
	}
	if doc == nil {
		doc = &model.ScheduleDocument{}
	}
	if loc == nil {
		loc = time.Local
	}

	byID := make(map[int]model.User, len(users))
	for _, u := range users {
		// First occurrence wins, like a linear search over the roster.
		if _, dup := byID[u.ID]; !dup {
			byID[u.ID] = u
		}
	}

	items := make([]model.Interval, 0)
	add := func(entry model.RawLayerEntry, disc, group, fallback string) {
		iv, ok := buildInterval(byID, entry, loc)
		if !ok {
			return
		}
		iv.ID = strconv.Itoa(entry.UserID) + "-" + entry.StartDate + "-" + disc
		iv.Group = group
		iv.Color = colors.lookup(entry.UserID, fallback)
		items = append(items, iv)
	}

	for i, layer := range doc.Layers {
		for _, entry := range layer.Entries {
			add(entry, strconv.Itoa(i), LayerGroupID(i), colors.Layer)
		}
	}
	for _, entry := range doc.OverrideLayer {
		add(entry, discOverride, GroupOverride, colors.Override)
	}
	for _, entry := range doc.FinalSchedule {
		add(entry, discFinal, GroupFinal, colors.Final)
	}

	groups := make([]model.Group, 0, len(doc.Layers)+3)
	groups = append(groups, model.Group{ID: GroupLayers, Label: GroupLayers})
	for i := range doc.Layers {
		id := LayerGroupID(i)
		groups = append(groups, model.Group{ID: id, Label: id})
	}
	groups = append(groups,
		model.Group{ID: GroupOverride, Label: GroupOverride},
		model.Group{ID: GroupFinal, Label: GroupFinal},
	)

	return Dataset{Items: items, Groups: groups}
}

func buildInterval(users map[int]model.User, entry model.RawLayerEntry, loc *time.Location) (model.Interval, bool) {
	if entry.StartDate == "" || entry.EndDate == "" {
		return model.Interval{}, false
	}
	user, ok := users[entry.UserID]
	if !ok {
		return model.Interval{}, false
	}
	start, err := ParseDate(entry.StartDate, loc)
	if err != nil {
		appLog.Debug("skipping entry with unparsable start", "user_id", entry.UserID, "start_date", entry.StartDate)
		return model.Interval{}, false
	}
	end, err := ParseDate(entry.EndDate, loc)
	if err != nil {
		appLog.Debug("skipping entry with unparsable end", "user_id", entry.UserID, "end_date", entry.EndDate)
		return model.Interval{}, false
	}
	return model.Interval{
		Content:   user.Name,
		Start:     start,
		End:       end,
		StartDate: entry.StartDate,
		EndDate:   entry.EndDate,
	}, true
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses a schedule date string. Values without an offset are
// interpreted in loc; date-only values become midnight.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
