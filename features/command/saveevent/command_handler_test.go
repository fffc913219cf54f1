package saveevent_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/schedulestore-go/features/command/refreshcalendarstats"
	"github.com/AntonStoeckl/schedulestore-go/features/command/saveevent"
	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/schedulestore/memengine"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
	"github.com/AntonStoeckl/schedulestore-go/testutil/fixtures"
	"github.com/AntonStoeckl/schedulestore-go/testutil/helper"
)

var errListenerDown = errors.New("listener down")

type failingListener struct{}

func (failingListener) HandleEventChange(context.Context, *schedulestore.Event, *schedulestore.Event) ([]shell.HandlerResult, error) {
	return nil, errListenerDown
}

func givenStore(t *testing.T, records ...schedulestore.Record) *memengine.RecordStore {
	t.Helper()

	store, err := memengine.NewRecordStore(memengine.WithRecords(records...))
	require.NoError(t, err)

	return store
}

func fetchRecord[T schedulestore.Record](t *testing.T, store schedulestore.RecordStore, kind schedulestore.Kind, name string) T {
	t.Helper()

	record, err := store.Fetch(context.Background(), kind, name)
	require.NoError(t, err)

	return record.(T)
}

func kickoffSpec() schedulestore.EventSpec {
	return schedulestore.EventSpec{
		CalendarName: " cal-1 ",
		Title:        " Kickoff ",
		StartAt:      "2024-01-05T09:00:00Z",
		EndAt:        "2024-02-02T10:00:00Z",
	}
}

func Test_CommandHandler_Handle_CreatesEventAndRefreshesStats(t *testing.T) {
	// arrange
	store := givenStore(t, fixtures.Calendar("cal-1", "Calendar 1"))
	handler := saveevent.NewCommandHandler(store, refreshcalendarstats.NewCommandHandler(store))

	// act
	result, err := handler.Handle(context.Background(), saveevent.BuildCommand("", kickoffSpec()))

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)
	assert.True(t, strings.HasPrefix(result.RecordName, saveevent.GenerateNamePrefix))

	event := fetchRecord[*schedulestore.Event](t, store, schedulestore.KindEvent, result.RecordName)
	assert.Equal(t, "cal-1", event.Spec.CalendarName)
	assert.Equal(t, "Kickoff", event.Spec.Title)
	assert.Equal(t, schedulestore.EventStatusScheduled, event.Spec.Status)

	calendar := fetchRecord[*schedulestore.Calendar](t, store, schedulestore.KindCalendar, "cal-1")
	assert.Equal(t, &schedulestore.CalendarStatus{
		EventCount:      1,
		RangeStartMonth: "2024-01",
		RangeEndMonth:   "2024-02",
		RangeEndDate:    "2024-02-02",
	}, calendar.Status)
}

func Test_CommandHandler_Handle_MovesEventBetweenCalendars(t *testing.T) {
	// arrange
	store := givenStore(t,
		fixtures.Calendar("cal-1", "Calendar 1"),
		fixtures.Calendar("cal-2", "Calendar 2"),
		fixtures.Event("e-1", "cal-1", "2024-01-05T09:00:00Z", ""),
	)
	handler := saveevent.NewCommandHandler(store, refreshcalendarstats.NewCommandHandler(store))

	spec := fixtures.Event("e-1", "cal-2", "2024-01-05T09:00:00Z", "").Spec

	// act
	result, err := handler.Handle(context.Background(), saveevent.BuildCommand("e-1", spec))

	// assert
	require.NoError(t, err)
	assert.False(t, result.Idempotent)
	assert.Equal(t, "e-1", result.RecordName)

	assert.Equal(t, 0, fetchRecord[*schedulestore.Calendar](t, store, schedulestore.KindCalendar, "cal-1").Status.EventCount)
	assert.Equal(t, 1, fetchRecord[*schedulestore.Calendar](t, store, schedulestore.KindCalendar, "cal-2").Status.EventCount)
}

func Test_CommandHandler_Handle_UnchangedEventIsIdempotent(t *testing.T) {
	// arrange
	existing := fixtures.Event("e-1", "cal-1", "2024-01-05T09:00:00Z", "")
	store := helper.NewConflictingStore(givenStore(t, fixtures.Calendar("cal-1", "Calendar 1"), existing))

	// act
	result, err := saveevent.NewCommandHandler(store, nil).Handle(
		context.Background(),
		saveevent.BuildCommand("e-1", existing.Spec),
	)

	// assert
	require.NoError(t, err)
	assert.True(t, result.Idempotent)
	assert.Zero(t, store.UpdateCalls())
}

func Test_CommandHandler_Handle_RetriesUpdateOnConflict(t *testing.T) {
	// arrange
	store := helper.NewConflictingStore(givenStore(t,
		fixtures.Calendar("cal-1", "Calendar 1"),
		fixtures.Event("e-1", "cal-1", "2024-01-05T09:00:00Z", ""),
	))
	store.FailNextUpdates(1)

	spec := kickoffSpec()

	// act
	result, err := saveevent.NewCommandHandler(store, nil, shell.WithRetryDelay(time.Millisecond)).Handle(
		context.Background(),
		saveevent.BuildCommand("e-1", spec),
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.RetryAttempts)
	assert.Equal(t, "Kickoff", fetchRecord[*schedulestore.Event](t, store, schedulestore.KindEvent, "e-1").Spec.Title)
}

func Test_CommandHandler_Handle_Errors(t *testing.T) {
	deletedAt := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	deletingCalendar := fixtures.Calendar("cal-deleting", "Deleting")
	deletingCalendar.Metadata.DeletionTimestamp = &deletedAt

	deletingEvent := fixtures.Event("e-deleting", "cal-1", "2024-01-05T09:00:00Z", "")
	deletingEvent.Metadata.DeletionTimestamp = &deletedAt

	withSpec := func(modify func(spec *schedulestore.EventSpec)) schedulestore.EventSpec {
		spec := kickoffSpec()
		modify(&spec)

		return spec
	}

	testCases := []struct {
		name      string
		command   saveevent.Command
		wantErr   error
		wantInput bool
	}{
		{
			name:      "blank calendar",
			command:   saveevent.BuildCommand("", withSpec(func(s *schedulestore.EventSpec) { s.CalendarName = " " })),
			wantInput: true,
		},
		{
			name:      "blank title",
			command:   saveevent.BuildCommand("", withSpec(func(s *schedulestore.EventSpec) { s.Title = "" })),
			wantInput: true,
		},
		{
			name:      "blank start",
			command:   saveevent.BuildCommand("", withSpec(func(s *schedulestore.EventSpec) { s.StartAt = "" })),
			wantInput: true,
		},
		{
			name: "both highlight flags",
			command: saveevent.BuildCommand("", withSpec(func(s *schedulestore.EventSpec) {
				s.ForceHighlight = true
				s.ForceHideHighlight = true
			})),
			wantInput: true,
		},
		{
			name:      "missing calendar",
			command:   saveevent.BuildCommand("", withSpec(func(s *schedulestore.EventSpec) { s.CalendarName = "cal-missing" })),
			wantInput: true,
		},
		{
			name:      "deleting calendar",
			command:   saveevent.BuildCommand("", withSpec(func(s *schedulestore.EventSpec) { s.CalendarName = "cal-deleting" })),
			wantInput: true,
		},
		{
			name:    "missing event",
			command: saveevent.BuildCommand("e-missing", kickoffSpec()),
			wantErr: schedulestore.ErrRecordNotFound,
		},
		{
			name:    "deleting event",
			command: saveevent.BuildCommand("e-deleting", kickoffSpec()),
			wantErr: schedulestore.ErrRecordNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := givenStore(t, fixtures.Calendar("cal-1", "Calendar 1"), deletingCalendar, deletingEvent)

			_, err := saveevent.NewCommandHandler(store, nil).Handle(context.Background(), tc.command)

			require.Error(t, err)
			assert.Equal(t, tc.wantInput, shell.IsInputError(err))

			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func Test_CommandHandler_Handle_ListenerFailureKeepsWrite(t *testing.T) {
	store := givenStore(t, fixtures.Calendar("cal-1", "Calendar 1"))

	result, err := saveevent.NewCommandHandler(store, failingListener{}).Handle(
		context.Background(),
		saveevent.BuildCommand("", kickoffSpec()),
	)

	assert.ErrorIs(t, err, shell.ErrEventChangeNotificationFailed)
	assert.ErrorIs(t, err, errListenerDown)
	require.NotEmpty(t, result.RecordName)

	_, err = store.Fetch(context.Background(), schedulestore.KindEvent, result.RecordName)
	assert.NoError(t, err)
}

func Test_NormalizeSpec_DropsRelatedPostWithoutName(t *testing.T) {
	spec := kickoffSpec()
	spec.RelatedPost = &schedulestore.RelatedPost{Name: "  ", Title: "Post"}
	spec.Status = " cancelled "

	normalized, err := saveevent.NormalizeSpec(spec)

	require.NoError(t, err)
	assert.Nil(t, normalized.RelatedPost)
	assert.Equal(t, schedulestore.EventStatusCancelled, normalized.Status)
	assert.NotNil(t, spec.RelatedPost)
}
