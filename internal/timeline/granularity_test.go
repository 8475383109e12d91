package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func lastMs(t time.Time) time.Time {
	return t.Add(-time.Millisecond)
}

func TestParseGranularity(t *testing.T) {
	for _, in := range []string{"2-week", "2 Weeks", " 2 weeks "} {
		g, err := ParseGranularity(in)
		require.NoError(t, err, in)
		assert.Equal(t, GranularityTwoWeek, g)
	}

	g, err := ParseGranularity("Month")
	require.NoError(t, err)
	assert.Equal(t, GranularityMonth, g)

	_, err = ParseGranularity("fortnight")
	assert.ErrorIs(t, err, ErrUnknownGranularity)
}

func TestGranularityLabels(t *testing.T) {
	labels := make([]string, 0, len(Granularities))
	for _, g := range Granularities {
		labels = append(labels, g.Label())
		assert.True(t, g.Valid())
	}
	assert.Equal(t, []string{"1 Day", "2 Days", "1 Week", "2 Weeks", "Month"}, labels)
	assert.False(t, Granularity("year").Valid())
}

func TestCalendarSpan(t *testing.T) {
	cal := NewCalendar(time.UTC, "sunday")
	// Wednesday afternoon.
	at := time.Date(2022, 10, 5, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		g          Granularity
		start, end time.Time
	}{
		{GranularityDay, day(2022, 10, 5), lastMs(day(2022, 10, 6))},
		{GranularityTwoDay, day(2022, 10, 5), lastMs(day(2022, 10, 7))},
		{GranularityWeek, day(2022, 10, 2), lastMs(day(2022, 10, 9))},
		{GranularityTwoWeek, day(2022, 10, 2), lastMs(day(2022, 10, 16))},
		{GranularityMonth, day(2022, 10, 1), lastMs(day(2022, 11, 1))},
	}
	for _, tt := range tests {
		t.Run(string(tt.g), func(t *testing.T) {
			start, end := cal.Span(at, tt.g)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestCalendarWeekStartMonday(t *testing.T) {
	cal := NewCalendar(time.UTC, "Monday")
	start, end := cal.Span(time.Date(2022, 10, 2, 12, 0, 0, 0, time.UTC), GranularityWeek)
	assert.Equal(t, day(2022, 9, 26), start)
	assert.Equal(t, lastMs(day(2022, 10, 3)), end)
}

func TestCalendarFollowing(t *testing.T) {
	cal := NewCalendar(time.UTC, "sunday")

	start, end := cal.Following(day(2022, 10, 31), GranularityMonth)
	assert.Equal(t, day(2022, 11, 1), start)
	assert.Equal(t, time.Date(2022, 11, 30, 23, 59, 59, int(999*time.Millisecond), time.UTC), end)

	start, end = cal.Following(lastMs(day(2022, 10, 3)), GranularityTwoDay)
	assert.Equal(t, day(2022, 10, 3), start)
	assert.Equal(t, lastMs(day(2022, 10, 5)), end)

	start, end = cal.Following(lastMs(day(2022, 10, 9)), GranularityWeek)
	assert.Equal(t, day(2022, 10, 9), start)
	assert.Equal(t, lastMs(day(2022, 10, 16)), end)

	start, end = cal.Following(lastMs(day(2023, 1, 1)), GranularityMonth)
	assert.Equal(t, day(2023, 1, 1), start)
	assert.Equal(t, lastMs(day(2023, 2, 1)), end)
}

func TestCalendarPreceding(t *testing.T) {
	cal := NewCalendar(time.UTC, "sunday")

	start, end := cal.Preceding(day(2022, 10, 1), GranularityMonth)
	assert.Equal(t, day(2022, 9, 1), start)
	assert.Equal(t, lastMs(day(2022, 10, 1)), end)

	start, end = cal.Preceding(day(2022, 10, 1), GranularityTwoDay)
	assert.Equal(t, day(2022, 9, 29), start)
	assert.Equal(t, lastMs(day(2022, 10, 1)), end)

	start, end = cal.Preceding(day(2022, 10, 2), GranularityTwoWeek)
	assert.Equal(t, day(2022, 9, 18), start)
	assert.Equal(t, lastMs(day(2022, 10, 2)), end)

	start, end = cal.Preceding(day(2022, 3, 31), GranularityMonth)
	assert.Equal(t, day(2022, 2, 1), start)
	assert.Equal(t, lastMs(day(2022, 3, 1)), end)
}

func TestCalendarRespectsLocation(t *testing.T) {
	seoul, err := time.LoadLocation("Asia/Seoul")
	require.NoError(t, err)
	cal := NewCalendar(seoul, "sunday")

	// 2022-10-31T20:00Z is already November 1st in Seoul.
	start, _ := cal.Span(time.Date(2022, 10, 31, 20, 0, 0, 0, time.UTC), GranularityMonth)
	assert.True(t, start.Equal(time.Date(2022, 11, 1, 0, 0, 0, 0, seoul)))
}
