package timeline_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"schedview/internal/model"
	"schedview/internal/timeline"
)

var (
	anchor     = time.Date(2022, 10, 1, 0, 0, 0, 0, time.UTC)
	initialEnd = time.Date(2022, 10, 31, 0, 0, 0, 0, time.UTC)
	// A Wednesday.
	now = time.Date(2026, 3, 18, 14, 0, 0, 0, time.UTC)
)

func endOfDay(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

func mountedNavigator(t *testing.T) (*timeline.Navigator, *timeline.Widget) {
	t.Helper()
	cal := timeline.NewCalendar(time.UTC, "sunday")
	nav := timeline.NewNavigator(cal, timeline.FixedClock(now), anchor)
	w := timeline.NewWidget(timeline.Dataset{}, timeline.DefaultOptions(anchor, initialEnd))
	nav.Attach(w)
	return nav, w
}

func TestNavigator_InitialState(t *testing.T) {
	nav, w := mountedNavigator(t)

	st := nav.State()
	assert.True(t, st.Mounted)
	assert.Equal(t, timeline.GranularityMonth, st.Granularity)
	assert.Equal(t, timeline.Control("month"), st.Selected)
	assert.Equal(t, model.Window{Start: anchor, End: initialEnd}, w.Window())
	assert.Equal(t, timeline.AnchorFixed, nav.AnchorMode())
}

func TestNavigator_NextInMonth(t *testing.T) {
	nav, w := mountedNavigator(t)

	require.True(t, nav.Next())

	win := w.Window()
	assert.Equal(t, time.Date(2022, 11, 1, 0, 0, 0, 0, time.UTC), win.Start)
	assert.Equal(t, endOfDay(2022, 11, 30), win.End)
	assert.Equal(t, timeline.ControlNext, nav.Selected())

	require.True(t, nav.Next())
	win = w.Window()
	assert.Equal(t, time.Date(2022, 12, 1, 0, 0, 0, 0, time.UTC), win.Start)
	assert.Equal(t, endOfDay(2022, 12, 31), win.End)
}

func TestNavigator_PreviousInMonth(t *testing.T) {
	nav, w := mountedNavigator(t)

	require.True(t, nav.Previous())

	win := w.Window()
	assert.Equal(t, time.Date(2022, 9, 1, 0, 0, 0, 0, time.UTC), win.Start)
	assert.Equal(t, endOfDay(2022, 9, 30), win.End)
	assert.Equal(t, timeline.ControlPrevious, nav.Selected())
}

func TestNavigator_TodayThenWeekAnchorsOnNow(t *testing.T) {
	nav, w := mountedNavigator(t)

	require.True(t, nav.Today())
	assert.Equal(t, timeline.AnchorToday, nav.AnchorMode())

	require.True(t, nav.ChangeGranularity(timeline.GranularityWeek, nav.AnchorMode()))

	win := w.Window()
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), win.Start)
	assert.Equal(t, endOfDay(2026, 3, 21), win.End)
	assert.Equal(t, timeline.GranularityWeek, nav.Granularity())
	assert.Equal(t, timeline.ControlToday, nav.Selected())
}

func TestNavigator_MonthThenDayAnchorsOnFixedDate(t *testing.T) {
	nav, w := mountedNavigator(t)

	require.True(t, nav.ChangeGranularity(timeline.GranularityDay, nav.AnchorMode()))

	win := w.Window()
	assert.Equal(t, anchor, win.Start)
	assert.Equal(t, endOfDay(2022, 10, 1), win.End)
	assert.Equal(t, timeline.GranularityDay, nav.Granularity())
	assert.Equal(t, timeline.Control("day"), nav.Selected())
}

func TestNavigator_TodayRecentersWithoutResizing(t *testing.T) {
	nav, w := mountedNavigator(t)
	before := w.Window().Duration()

	require.True(t, nav.Today())

	win := w.Window()
	assert.Equal(t, before, win.Duration())
	assert.Equal(t, now, win.Start.Add(win.Duration()/2))
	assert.Equal(t, timeline.GranularityMonth, nav.Granularity())
}

func TestNavigator_TwoDaySteps(t *testing.T) {
	nav, w := mountedNavigator(t)
	require.True(t, nav.ChangeGranularity(timeline.GranularityTwoDay, timeline.AnchorFixed))
	assert.Equal(t, endOfDay(2022, 10, 2), w.Window().End)

	require.True(t, nav.Next())
	assert.Equal(t, time.Date(2022, 10, 3, 0, 0, 0, 0, time.UTC), w.Window().Start)
	assert.Equal(t, endOfDay(2022, 10, 4), w.Window().End)

	require.True(t, nav.Previous())
	require.True(t, nav.Previous())
	assert.Equal(t, time.Date(2022, 9, 29, 0, 0, 0, 0, time.UTC), w.Window().Start)
	assert.Equal(t, endOfDay(2022, 9, 30), w.Window().End)
}

func TestNavigator_CommandsBeforeMountAreNoOps(t *testing.T) {
	cal := timeline.NewCalendar(time.UTC, "sunday")
	nav := timeline.NewNavigator(cal, timeline.FixedClock(now), anchor)

	assert.False(t, nav.Today())
	assert.False(t, nav.Next())
	assert.False(t, nav.Previous())
	assert.False(t, nav.ChangeGranularity(timeline.GranularityDay, timeline.AnchorToday))

	st := nav.State()
	assert.False(t, st.Mounted)
	assert.Equal(t, timeline.GranularityMonth, st.Granularity)
	assert.Equal(t, timeline.Control("month"), st.Selected)
	assert.True(t, st.Window.Start.IsZero())
}

func TestNavigator_RejectsUnknownGranularity(t *testing.T) {
	nav, w := mountedNavigator(t)
	before := w.Window()

	assert.False(t, nav.ChangeGranularity(timeline.Granularity("year"), timeline.AnchorFixed))
	assert.Equal(t, before, w.Window())
	assert.Equal(t, timeline.GranularityMonth, nav.Granularity())
}

type mockHost struct {
	mock.Mock
}

func (m *mockHost) Window() model.Window {
	return m.Called().Get(0).(model.Window)
}

func (m *mockHost) SetWindow(start, end time.Time) {
	m.Called(start, end)
}

func (m *mockHost) MoveTo(t time.Time) {
	m.Called(t)
}

func TestNavigator_DrivesHostInterface(t *testing.T) {
	host := &mockHost{}
	host.On("MoveTo", now).Return().Once()
	host.On("Window").Return(model.Window{Start: anchor, End: initialEnd}).Once()
	host.On("SetWindow", time.Date(2022, 11, 1, 0, 0, 0, 0, time.UTC), endOfDay(2022, 11, 30)).Return().Once()

	nav := timeline.NewNavigator(timeline.NewCalendar(time.UTC, "sunday"), timeline.FixedClock(now), anchor)
	nav.Attach(host)

	require.True(t, nav.Today())
	require.True(t, nav.Next())

	host.AssertExpectations(t)
}

func TestParseAnchorMode(t *testing.T) {
	m, err := timeline.ParseAnchorMode("Today")
	require.NoError(t, err)
	assert.Equal(t, timeline.AnchorToday, m)

	m, err = timeline.ParseAnchorMode("fixed")
	require.NoError(t, err)
	assert.Equal(t, timeline.AnchorFixed, m)

	_, err = timeline.ParseAnchorMode("tomorrow")
	assert.ErrorIs(t, err, timeline.ErrUnknownAnchorMode)
}
