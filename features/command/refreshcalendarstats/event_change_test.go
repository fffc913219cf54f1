package refreshcalendarstats_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/schedulestore-go/features/command/refreshcalendarstats"
	"github.com/AntonStoeckl/schedulestore-go/testutil/fixtures"
)

func Test_HandleEventChange_RefreshesPreviousAndNewCalendar(t *testing.T) {
	// arrange
	before := fixtures.Event("e-1", "cal-1", "2024-01-05T00:00:00Z", "")
	after := before.Clone()
	after.Spec.CalendarName = "cal-2"

	store := givenStore(t,
		fixtures.Calendar("cal-1", "Calendar 1"),
		fixtures.Calendar("cal-2", "Calendar 2"),
		after,
	)

	// act
	results, err := refreshcalendarstats.NewCommandHandler(store).HandleEventChange(context.Background(), before, after)

	// assert
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "cal-1", results[0].RecordName)
	assert.Equal(t, "cal-2", results[1].RecordName)

	assert.Equal(t, 0, fetchCalendar(t, store, "cal-1").Status.EventCount)
	assert.Equal(t, 1, fetchCalendar(t, store, "cal-2").Status.EventCount)
}

func Test_HandleEventChange_IrrelevantChangeRefreshesNothing(t *testing.T) {
	before := fixtures.Event("e-1", "cal-1", "2024-01-05T00:00:00Z", "")
	after := before.Clone()
	after.Spec.Summary = "new summary"

	store := givenStore(t, fixtures.Calendar("cal-1", "Calendar 1"), after)

	results, err := refreshcalendarstats.NewCommandHandler(store).HandleEventChange(context.Background(), before, after)

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Nil(t, fetchCalendar(t, store, "cal-1").Status)
}
