package ics

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedview/internal/model"
	"schedview/internal/timeline"
)

func sampleItems() []model.Interval {
	users := []model.User{{ID: 23, Name: "Alice"}, {ID: 24, Name: "Bob"}}
	doc := &model.ScheduleDocument{
		Layers: []model.LayerGroup{{Entries: []model.RawLayerEntry{
			{UserID: 24, StartDate: "2022-10-01", EndDate: "2022-10-03"},
		}}},
		FinalSchedule: []model.RawLayerEntry{
			{UserID: 23, StartDate: "2022-10-05", EndDate: "2022-10-07"},
			{UserID: 24, StartDate: "2022-10-07", EndDate: "2022-10-08"},
		},
	}
	return timeline.Normalize(users, doc, timeline.DefaultColorTable(), time.UTC).Items
}

func parse(t *testing.T, body string) *ical.Calendar {
	t.Helper()
	cal, err := ical.ParseCalendar(strings.NewReader(body))
	require.NoError(t, err)
	return cal
}

func TestExport_FinalScheduleOnly(t *testing.T) {
	stamp := time.Date(2022, 10, 1, 0, 0, 0, 0, time.UTC)
	body := Export(sampleItems(), ExportOptions{Name: "On-call", Stamp: stamp})

	cal := parse(t, body)
	events := cal.Events()
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "23-2022-10-05-final", first.Id())
	assert.Equal(t, "Alice", first.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, timeline.GroupFinal, first.GetProperty(ical.ComponentPropertyCategories).Value)
	assert.Equal(t, "#FFBF00", first.GetProperty(ical.ComponentProperty("COLOR")).Value)

	start, err := first.GetStartAt()
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2022, 10, 5, 0, 0, 0, 0, time.UTC)))
	end, err := first.GetEndAt()
	require.NoError(t, err)
	assert.True(t, end.Equal(time.Date(2022, 10, 7, 0, 0, 0, 0, time.UTC)))

	assert.Contains(t, body, "X-WR-CALNAME:On-call")
}

func TestExport_AllGroups(t *testing.T) {
	cal := parse(t, Export(sampleItems(), ExportOptions{All: true}))

	ids := make([]string, 0)
	for _, ev := range cal.Events() {
		ids = append(ids, ev.Id())
	}
	assert.Equal(t, []string{"24-2022-10-01-0", "23-2022-10-05-final", "24-2022-10-07-final"}, ids)
}

func TestExport_Empty(t *testing.T) {
	cal := parse(t, Export(nil, ExportOptions{}))
	assert.Empty(t, cal.Events())
}
