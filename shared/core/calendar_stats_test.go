package core_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/core"
)

func event(startAt, endAt string) *schedulestore.Event {
	return &schedulestore.Event{Spec: schedulestore.EventSpec{StartAt: startAt, EndAt: endAt}}
}

func Test_ComputeCalendarStats_SpanAndPointEvents(t *testing.T) {
	// arrange
	events := []*schedulestore.Event{
		event("2024-01-15T09:00", "2024-02-02T10:00"),
		event("2024-03-01", ""),
	}

	// act
	stats := core.ComputeCalendarStats(events)

	// assert
	assert.Equal(t, core.CalendarStats{
		EventCount:      2,
		RangeStartMonth: "2024-01",
		RangeEndMonth:   "2024-03",
		RangeEndDate:    "2024-03-01",
	}, stats)
}

func Test_ComputeCalendarStats_FallsBackToEndWhenStartIsMalformed(t *testing.T) {
	stats := core.ComputeCalendarStats([]*schedulestore.Event{event("garbage", "2024-05-20T00:00")})

	assert.Equal(t, core.CalendarStats{
		EventCount:      1,
		RangeStartMonth: "2024-05",
		RangeEndMonth:   "2024-05",
		RangeEndDate:    "2024-05-20",
	}, stats)
}

func Test_ComputeCalendarStats_EmptyInput(t *testing.T) {
	assert.Equal(t, core.CalendarStats{}, core.ComputeCalendarStats(nil))
	assert.Equal(t, core.CalendarStats{}, core.ComputeCalendarStats([]*schedulestore.Event{}))
}

func Test_ComputeCalendarStats_CountsEventsWithoutUsableDates(t *testing.T) {
	stats := core.ComputeCalendarStats([]*schedulestore.Event{event("soon", ""), event("", "2024-1-1")})

	assert.Equal(t, core.CalendarStats{EventCount: 2}, stats)
}

func Test_ComputeCalendarStats_IgnoresNilAndDeletingEvents(t *testing.T) {
	deletedAt := time.Now()
	deleting := event("2020-01-01", "2030-12-31")
	deleting.Metadata.DeletionTimestamp = &deletedAt

	stats := core.ComputeCalendarStats([]*schedulestore.Event{nil, deleting, event("2024-06-01", "")})

	assert.Equal(t, core.CalendarStats{
		EventCount:      1,
		RangeStartMonth: "2024-06",
		RangeEndMonth:   "2024-06",
		RangeEndDate:    "2024-06-01",
	}, stats)
}

func Test_ComputeCalendarStats_IsOrderIndependent(t *testing.T) {
	a := event("2024-04-10", "2024-04-12")
	b := event("2023-11-30T23:00:00Z", "")
	c := event("bad", "2025-01-05T00:00:00Z")

	permutations := [][]*schedulestore.Event{
		{a, b, c}, {a, c, b}, {b, a, c}, {b, c, a}, {c, a, b}, {c, b, a},
	}

	expected := core.ComputeCalendarStats(permutations[0])
	for _, events := range permutations[1:] {
		assert.Equal(t, expected, core.ComputeCalendarStats(events))
	}

	assert.LessOrEqual(t, expected.RangeStartMonth, expected.RangeEndMonth)
	assert.Equal(t, "2023-11", expected.RangeStartMonth)
	assert.Equal(t, "2025-01", expected.RangeEndMonth)
	assert.Equal(t, "2025-01-05", expected.RangeEndDate)
}

func Test_DateKey(t *testing.T) {
	assert.Equal(t, "2024-01-05", core.DateKey("2024-01-05T10:00:00+02:00"))
	assert.Equal(t, "2024-01-05", core.DateKey("2024-01-05"))
	assert.Equal(t, "", core.DateKey("2024-1-5"))
	assert.Equal(t, "", core.DateKey("2024/01/05"))
	assert.Equal(t, "", core.DateKey(""))
	assert.Equal(t, "2024-01", core.MonthKey("2024-01-05"))
	assert.Equal(t, "", core.MonthKey(""))
}

func Test_CalendarStats_StatusRoundTrip(t *testing.T) {
	stats := core.CalendarStats{EventCount: 3, RangeStartMonth: "2024-01", RangeEndMonth: "2024-02", RangeEndDate: "2024-02-10"}
	status := &schedulestore.CalendarStatus{}

	assert.False(t, stats.MatchesStatus(nil))
	assert.False(t, stats.MatchesStatus(status))

	stats.ApplyTo(status)

	assert.True(t, stats.MatchesStatus(status))
	assert.True(t, core.CalendarStats{}.MatchesStatus(&schedulestore.CalendarStatus{}))
}
