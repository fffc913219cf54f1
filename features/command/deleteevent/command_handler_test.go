package deleteevent_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/schedulestore-go/features/command/deleteevent"
	"github.com/AntonStoeckl/schedulestore-go/features/command/refreshcalendarstats"
	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/schedulestore/memengine"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
	"github.com/AntonStoeckl/schedulestore-go/testutil/fixtures"
	"github.com/AntonStoeckl/schedulestore-go/testutil/helper"
)

var deletedAt = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

func givenStore(t *testing.T, records ...schedulestore.Record) *memengine.RecordStore {
	t.Helper()

	store, err := memengine.NewRecordStore(memengine.WithRecords(records...))
	require.NoError(t, err)

	return store
}

func Test_CommandHandler_Handle_MarksEventAndRefreshesStats(t *testing.T) {
	// arrange
	calendar := fixtures.Calendar("cal-1", "Calendar 1")
	calendar.Status = &schedulestore.CalendarStatus{
		EventCount:      2,
		RangeStartMonth: "2024-01",
		RangeEndMonth:   "2024-03",
		RangeEndDate:    "2024-03-20",
	}

	store := givenStore(t,
		calendar,
		fixtures.Event("e-1", "cal-1", "2024-01-05T00:00:00Z", ""),
		fixtures.Event("e-2", "cal-1", "2024-03-20T00:00:00Z", ""),
	)

	handler := deleteevent.NewCommandHandler(store, refreshcalendarstats.NewCommandHandler(store)).
		WithClock(func() time.Time { return deletedAt })

	// act
	result, err := handler.Handle(context.Background(), deleteevent.BuildCommand("e-2"))

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)

	record, err := store.Fetch(context.Background(), schedulestore.KindEvent, "e-2")
	require.NoError(t, err)
	require.NotNil(t, record.Meta().DeletionTimestamp)
	assert.Equal(t, deletedAt, *record.Meta().DeletionTimestamp)

	record, err = store.Fetch(context.Background(), schedulestore.KindCalendar, "cal-1")
	require.NoError(t, err)
	assert.Equal(t, &schedulestore.CalendarStatus{
		EventCount:      1,
		RangeStartMonth: "2024-01",
		RangeEndMonth:   "2024-01",
		RangeEndDate:    "2024-01-05",
	}, record.(*schedulestore.Calendar).Status)
}

func Test_CommandHandler_Handle_AlreadyDeletingIsIdempotent(t *testing.T) {
	event := fixtures.Event("e-1", "cal-1", "2024-01-05T00:00:00Z", "")
	event.Metadata.DeletionTimestamp = &deletedAt
	store := helper.NewConflictingStore(givenStore(t, event))

	result, err := deleteevent.NewCommandHandler(store, nil).Handle(context.Background(), deleteevent.BuildCommand("e-1"))

	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Zero(t, store.UpdateCalls())
}

func Test_CommandHandler_Handle_RetriesOnConflict(t *testing.T) {
	store := helper.NewConflictingStore(givenStore(t, fixtures.Event("e-1", "cal-1", "2024-01-05T00:00:00Z", "")))
	store.FailNextUpdates(2)

	result, err := deleteevent.NewCommandHandler(store, nil, shell.WithRetryDelay(time.Millisecond)).
		Handle(context.Background(), deleteevent.BuildCommand("e-1"))

	require.NoError(t, err)
	assert.Equal(t, 3, result.RetryAttempts)
	assert.Equal(t, 3, store.UpdateCalls())
}

func Test_CommandHandler_Handle_Errors(t *testing.T) {
	store := givenStore(t)
	handler := deleteevent.NewCommandHandler(store, nil)

	_, err := handler.Handle(context.Background(), deleteevent.BuildCommand(" "))
	assert.True(t, shell.IsInputError(err))

	_, err = handler.Handle(context.Background(), deleteevent.BuildCommand("e-missing"))
	assert.ErrorIs(t, err, schedulestore.ErrRecordNotFound)
	assert.False(t, shell.IsInputError(err))
}
