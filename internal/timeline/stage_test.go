package timeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"schedview/internal/model"
	"schedview/internal/timeline"
)

func newCountingStage() (*timeline.Stage, *int) {
	mounts := 0
	st := timeline.NewStage(timeline.DefaultColorTable(), time.UTC, func(timeline.Dataset) { mounts++ })
	return st, &mounts
}

func TestStage_MountsOnceWhenBothSettle(t *testing.T) {
	st, mounts := newCountingStage()
	assert.Equal(t, timeline.StatePending, st.State())

	assert.False(t, st.SetTarget(true))
	assert.False(t, st.ScheduleLoaded(&model.ScheduleDocument{}))
	assert.Equal(t, timeline.StatePartial, st.State())
	assert.Equal(t, 0, *mounts)

	assert.True(t, st.UsersLoaded([]model.User{{ID: 1, Name: "Bob"}}))
	assert.Equal(t, timeline.StateReady, st.State())
	assert.Equal(t, 1, *mounts)
	assert.True(t, st.Mounted())

	// Later events never remount.
	assert.False(t, st.UsersLoaded([]model.User{{ID: 2, Name: "Eve"}}))
	assert.False(t, st.SetTarget(true))
	assert.Equal(t, 1, *mounts)
	assert.Equal(t, []model.User{{ID: 1, Name: "Bob"}}, st.Users())
}

func TestStage_OrderOfCompletionDoesNotMatter(t *testing.T) {
	st, mounts := newCountingStage()
	st.SetTarget(true)

	assert.False(t, st.UsersLoaded([]model.User{{ID: 1, Name: "Bob"}}))
	assert.Equal(t, timeline.StatePartial, st.State())
	assert.True(t, st.ScheduleLoaded(nil))
	assert.Equal(t, 1, *mounts)
}

func TestStage_NoUsersNeverMounts(t *testing.T) {
	st, mounts := newCountingStage()
	st.SetTarget(true)

	st.UsersLoaded(nil)
	st.ScheduleLoaded(&model.ScheduleDocument{})

	assert.Equal(t, timeline.StateReady, st.State())
	assert.False(t, st.Mounted())
	assert.Equal(t, 0, *mounts)
	assert.True(t, st.Dataset().Empty())
}

func TestStage_WaitsForMountTarget(t *testing.T) {
	st, mounts := newCountingStage()

	st.UsersLoaded([]model.User{{ID: 1, Name: "Bob"}})
	st.ScheduleLoaded(&model.ScheduleDocument{})
	assert.Equal(t, 0, *mounts)

	assert.True(t, st.SetTarget(true))
	assert.Equal(t, 1, *mounts)
}

func TestStage_DatasetIsStableAfterMount(t *testing.T) {
	var mounted timeline.Dataset
	st := timeline.NewStage(timeline.DefaultColorTable(), time.UTC, func(ds timeline.Dataset) { mounted = ds })
	st.SetTarget(true)
	st.UsersLoaded([]model.User{{ID: 23, Name: "Alice"}})
	st.ScheduleLoaded(&model.ScheduleDocument{
		FinalSchedule: []model.RawLayerEntry{{UserID: 23, StartDate: "2022-10-01", EndDate: "2022-10-02"}},
	})

	assert.Len(t, mounted.Items, 1)
	assert.Equal(t, mounted, st.Dataset())
}

func TestLoadStateString(t *testing.T) {
	assert.Equal(t, "pending", timeline.StatePending.String())
	assert.Equal(t, "partial", timeline.StatePartial.String())
	assert.Equal(t, "ready", timeline.StateReady.String())
}
