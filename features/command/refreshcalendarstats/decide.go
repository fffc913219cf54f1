package refreshcalendarstats

import (
	"strings"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

// CalendarsAffectedBy returns the calendars whose stats can change when an event goes from before to after.
// A nil before means the event was created, a nil after means it was removed.
//
// Only the owning calendar, the start, the end and the deletion marker feed into the stats.
// When the event moved between calendars both are returned, the previous owner first.
func CalendarsAffectedBy(before, after *schedulestore.Event) []string {
	switch {
	case before == nil && after == nil:
		return nil
	case before == nil:
		return nonBlank(after.Spec.CalendarName)
	case after == nil:
		return nonBlank(before.Spec.CalendarName)
	}

	beforeCalendar := strings.TrimSpace(before.Spec.CalendarName)
	afterCalendar := strings.TrimSpace(after.Spec.CalendarName)

	if beforeCalendar != afterCalendar {
		return nonBlank(beforeCalendar, afterCalendar)
	}

	if before.Spec.StartAt != after.Spec.StartAt ||
		before.Spec.EndAt != after.Spec.EndAt ||
		before.Metadata.IsDeleting() != after.Metadata.IsDeleting() {

		return nonBlank(afterCalendar)
	}

	return nil
}

func nonBlank(names ...string) []string {
	var result []string

	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			result = append(result, name)
		}
	}

	return result
}
