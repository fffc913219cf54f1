package refreshcalendarstats_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/schedulestore-go/features/command/refreshcalendarstats"
	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/schedulestore/memengine"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
	"github.com/AntonStoeckl/schedulestore-go/testutil/fixtures"
	"github.com/AntonStoeckl/schedulestore-go/testutil/helper"
)

var fastRetries = shell.WithRetryDelay(time.Millisecond)

func givenStore(t *testing.T, records ...schedulestore.Record) *memengine.RecordStore {
	t.Helper()

	store, err := memengine.NewRecordStore(memengine.WithRecords(records...))
	require.NoError(t, err)

	return store
}

func fetchCalendar(t *testing.T, store schedulestore.RecordStore, name string) *schedulestore.Calendar {
	t.Helper()

	record, err := store.Fetch(context.Background(), schedulestore.KindCalendar, name)
	require.NoError(t, err)

	return record.(*schedulestore.Calendar)
}

func Test_CommandHandler_Handle_WritesStats(t *testing.T) {
	// arrange
	deletedAt := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	deleted := fixtures.Event("e-deleted", "cal-1", "2025-12-01T00:00:00Z", "")
	deleted.Metadata.DeletionTimestamp = &deletedAt

	store := givenStore(t,
		fixtures.Calendar("cal-1", "Calendar 1"),
		fixtures.Event("e-1", "cal-1", "2024-01-05T00:00:00Z", ""),
		fixtures.Event("e-2", "cal-1", "2024-03-20T00:00:00Z", ""),
		fixtures.Event("e-other", "cal-2", "2023-01-01T00:00:00Z", ""),
		deleted,
	)

	// act
	result, err := refreshcalendarstats.NewCommandHandler(store).Handle(
		context.Background(),
		refreshcalendarstats.BuildCommand("cal-1"),
	)

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)
	assert.Equal(t, "cal-1", result.RecordName)
	assert.Equal(t, 1, result.RetryAttempts)

	calendar := fetchCalendar(t, store, "cal-1")
	assert.Equal(t, &schedulestore.CalendarStatus{
		EventCount:      2,
		RangeStartMonth: "2024-01",
		RangeEndMonth:   "2024-03",
		RangeEndDate:    "2024-03-20",
	}, calendar.Status)
	assert.Equal(t, int64(1), calendar.Metadata.Version)
}

func Test_CommandHandler_Handle_UnchangedStatsAreNotWritten(t *testing.T) {
	// arrange
	calendar := fixtures.Calendar("cal-1", "Calendar 1")
	calendar.Status = &schedulestore.CalendarStatus{
		EventCount:      1,
		RangeStartMonth: "2024-02",
		RangeEndMonth:   "2024-02",
		RangeEndDate:    "2024-02-10",
	}

	store := helper.NewConflictingStore(givenStore(t,
		calendar,
		fixtures.Event("e-1", "cal-1", "2024-02-10T10:00:00Z", ""),
	))

	// act
	result, err := refreshcalendarstats.NewCommandHandler(store).Handle(
		context.Background(),
		refreshcalendarstats.BuildCommand("cal-1"),
	)

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Zero(t, store.UpdateCalls())
}

func Test_CommandHandler_Handle_EmptyCalendarGetsZeroStats(t *testing.T) {
	store := givenStore(t, fixtures.Calendar("cal-1", "Calendar 1"))

	result, err := refreshcalendarstats.NewCommandHandler(store).Handle(
		context.Background(),
		refreshcalendarstats.BuildCommand(" cal-1 "),
	)

	require.NoError(t, err)
	assert.False(t, result.Idempotent)
	assert.Equal(t, &schedulestore.CalendarStatus{}, fetchCalendar(t, store, "cal-1").Status)
}

func Test_CommandHandler_Handle_NoOps(t *testing.T) {
	deletedAt := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	deleting := fixtures.Calendar("cal-deleting", "Deleting")
	deleting.Metadata.DeletionTimestamp = &deletedAt

	testCases := []struct {
		name         string
		calendarName string
	}{
		{name: "blank name", calendarName: "  "},
		{name: "missing calendar", calendarName: "cal-missing"},
		{name: "deleting calendar", calendarName: "cal-deleting"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := helper.NewConflictingStore(givenStore(t, deleting))

			result, err := refreshcalendarstats.NewCommandHandler(store).Handle(
				context.Background(),
				refreshcalendarstats.BuildCommand(tc.calendarName),
			)

			require.NoError(t, err)
			assert.True(t, result.Idempotent)
			assert.Zero(t, store.UpdateCalls())
		})
	}
}

func Test_CommandHandler_Handle_RetriesAfterConcurrentRefresh(t *testing.T) {
	// arrange
	store := helper.NewConflictingStore(givenStore(t,
		fixtures.Calendar("cal-1", "Calendar 1"),
		fixtures.Event("e-1", "cal-1", "2024-01-05T00:00:00Z", ""),
	))

	concurrentWriteDone := false
	store.BeforeUpdate = func(ctx context.Context, inner schedulestore.RecordStore, _ schedulestore.Record) {
		if concurrentWriteDone {
			return
		}

		concurrentWriteDone = true

		// another writer adds an event and refreshes first, our read becomes stale
		_, err := inner.Create(ctx, fixtures.Event("e-2", "cal-1", "2024-03-20T00:00:00Z", ""))
		require.NoError(t, err)

		_, err = refreshcalendarstats.NewCommandHandler(inner).Handle(ctx, refreshcalendarstats.BuildCommand("cal-1"))
		require.NoError(t, err)
	}

	// act
	result, err := refreshcalendarstats.NewCommandHandler(store, fastRetries).Handle(
		context.Background(),
		refreshcalendarstats.BuildCommand("cal-1"),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.RetryAttempts)
	assert.Equal(t, 1, store.UpdateCalls())

	// the retry read the stats the concurrent writer stored, so it had nothing left to write
	assert.True(t, result.Idempotent)

	calendar := fetchCalendar(t, store, "cal-1")
	assert.Equal(t, 2, calendar.Status.EventCount)
	assert.Equal(t, "2024-01", calendar.Status.RangeStartMonth)
	assert.Equal(t, "2024-03", calendar.Status.RangeEndMonth)
	assert.Equal(t, "2024-03-20", calendar.Status.RangeEndDate)
}

func Test_CommandHandler_Handle_SucceedsWithinTwoRetries(t *testing.T) {
	// arrange
	store := helper.NewConflictingStore(givenStore(t,
		fixtures.Calendar("cal-1", "Calendar 1"),
		fixtures.Event("e-1", "cal-1", "2024-01-05T00:00:00Z", ""),
	))
	store.FailNextUpdates(2)

	// act
	result, err := refreshcalendarstats.NewCommandHandler(store, fastRetries).Handle(
		context.Background(),
		refreshcalendarstats.BuildCommand("cal-1"),
	)

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)
	assert.Equal(t, 3, result.RetryAttempts)
	assert.False(t, result.RetriesExhausted)
	assert.Equal(t, 1, fetchCalendar(t, store, "cal-1").Status.EventCount)
}

func Test_CommandHandler_Handle_SurfacesConflictAfterExhaustedRetries(t *testing.T) {
	// arrange
	store := helper.NewConflictingStore(givenStore(t,
		fixtures.Calendar("cal-1", "Calendar 1"),
		fixtures.Event("e-1", "cal-1", "2024-01-05T00:00:00Z", ""),
	))
	store.FailNextUpdates(3)

	// act
	result, err := refreshcalendarstats.NewCommandHandler(store, fastRetries).Handle(
		context.Background(),
		refreshcalendarstats.BuildCommand("cal-1"),
	)

	// assert
	assert.ErrorIs(t, err, schedulestore.ErrConcurrencyConflict)
	assert.True(t, result.RetriesExhausted)
	assert.Equal(t, 3, result.RetryAttempts)
	assert.Equal(t, 3, store.UpdateCalls())
	assert.Nil(t, fetchCalendar(t, store, "cal-1").Status)
}

func Test_CommandHandler_Handle_CanceledContext(t *testing.T) {
	store := givenStore(t, fixtures.Calendar("cal-1", "Calendar 1"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := refreshcalendarstats.NewCommandHandler(store).Handle(ctx, refreshcalendarstats.BuildCommand("cal-1"))

	assert.ErrorIs(t, err, context.Canceled)
}

func withoutRetries() shell.RetryOption {
	return shell.WithMaxRetries(0)
}
