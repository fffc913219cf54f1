package schedulestore_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

//nolint:funlen
func Test_FilterBuilder_Sanitizing(t *testing.T) {
	tests := []struct {
		name     string
		build    func() schedulestore.Filter
		validate func(t *testing.T, f schedulestore.Filter)
	}{
		{
			name: "matching_any_record_creates_empty_filter",
			build: func() schedulestore.Filter {
				return schedulestore.MatchingAnyRecord()
			},
			validate: func(t *testing.T, f schedulestore.Filter) {
				assert.True(t, f.IsEmpty())
				assert.Empty(t, f.Predicates())
			},
		},
		{
			name: "blank_values_are_dropped",
			build: func() schedulestore.Filter {
				return schedulestore.BuildFilter().
					AndEqual(schedulestore.FieldEventCalendarName, "").
					AndEqual(schedulestore.FieldEventStatus, "   ").
					Finalize()
			},
			validate: func(t *testing.T, f schedulestore.Filter) {
				assert.True(t, f.IsEmpty())
			},
		},
		{
			name: "values_are_trimmed",
			build: func() schedulestore.Filter {
				return schedulestore.BuildFilter().
					AndEqual(schedulestore.FieldEventCalendarName, "  team-cal \t").
					Finalize()
			},
			validate: func(t *testing.T, f schedulestore.Filter) {
				assert.Len(t, f.Predicates(), 1)
				assert.Equal(t, schedulestore.FieldEventCalendarName, f.Predicates()[0].Field())
				assert.Equal(t, "team-cal", f.Predicates()[0].Val())
			},
		},
		{
			name: "predicates_are_sorted_and_deduplicated",
			build: func() schedulestore.Filter {
				return schedulestore.BuildFilter().
					AndEqual(schedulestore.FieldEventStatus, "scheduled").
					AndEqual(schedulestore.FieldEventCalendarName, "team-cal").
					AllOf(
						schedulestore.P(schedulestore.FieldEventStatus, "scheduled "),
						schedulestore.P("", "orphan"),
					).
					Finalize()
			},
			validate: func(t *testing.T, f schedulestore.Filter) {
				assert.Equal(
					t,
					[]schedulestore.FilterPredicate{
						schedulestore.P(schedulestore.FieldEventCalendarName, "team-cal"),
						schedulestore.P(schedulestore.FieldEventStatus, "scheduled"),
					},
					f.Predicates(),
				)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, tt.build())
		})
	}
}

func Test_FilterBuilder_IsImmutable(t *testing.T) {
	// arrange
	base := schedulestore.BuildFilter().AndEqual(schedulestore.FieldEventCalendarName, "a")

	// act
	withStatus := base.AndEqual(schedulestore.FieldEventStatus, "scheduled").Finalize()
	withoutStatus := base.Finalize()

	// assert
	assert.Len(t, withStatus.Predicates(), 2)
	assert.Len(t, withoutStatus.Predicates(), 1)
}

func Test_Filter_Matches(t *testing.T) {
	event := &schedulestore.Event{
		Metadata: schedulestore.Metadata{Name: "ev-1"},
		Spec: schedulestore.EventSpec{
			CalendarName: "team-cal",
			Status:       "scheduled",
			StartAt:      "2024-01-05T10:00:00Z",
		},
	}

	tests := []struct {
		name   string
		filter schedulestore.Filter
		want   bool
	}{
		{
			name:   "empty_filter_matches",
			filter: schedulestore.MatchingAnyRecord(),
			want:   true,
		},
		{
			name: "all_predicates_hold",
			filter: schedulestore.BuildFilter().
				AndEqual(schedulestore.FieldEventCalendarName, "team-cal").
				AndEqual(schedulestore.FieldEventStatus, "scheduled").
				Finalize(),
			want: true,
		},
		{
			name: "one_predicate_fails",
			filter: schedulestore.BuildFilter().
				AndEqual(schedulestore.FieldEventCalendarName, "team-cal").
				AndEqual(schedulestore.FieldEventStatus, "cancelled").
				Finalize(),
			want: false,
		},
		{
			name: "metadata_name_is_indexed",
			filter: schedulestore.BuildFilter().
				AndEqual(schedulestore.FieldMetadataName, "ev-1").
				Finalize(),
			want: true,
		},
		{
			name: "field_of_other_kind_never_matches",
			filter: schedulestore.BuildFilter().
				AndEqual(schedulestore.FieldLogOperator, "alice").
				Finalize(),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(event))
		})
	}
}

func Test_Filter_OnlyLive_ExcludesDeletingRecords(t *testing.T) {
	// arrange
	deletedAt := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	live := &schedulestore.Calendar{Metadata: schedulestore.Metadata{Name: "team"}}
	deleting := &schedulestore.Calendar{Metadata: schedulestore.Metadata{Name: "old", DeletionTimestamp: &deletedAt}}

	// act
	filter := schedulestore.BuildFilter().OnlyLive().Finalize()

	// assert
	assert.True(t, filter.IsLiveOnly())
	assert.False(t, filter.IsEmpty())
	assert.Empty(t, filter.Predicates())
	assert.True(t, filter.Matches(live))
	assert.False(t, filter.Matches(deleting))
	assert.True(t, schedulestore.MatchingAnyRecord().Matches(deleting))
}
