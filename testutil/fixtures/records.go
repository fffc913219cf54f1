package fixtures

import (
	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

func Calendar(name, displayName string) *schedulestore.Calendar {
	return &schedulestore.Calendar{
		Metadata: schedulestore.Metadata{Name: name},
		Spec: schedulestore.CalendarSpec{
			DisplayName: displayName,
			Visible:     true,
		},
	}
}

func Event(name, calendarName, startAt, endAt string) *schedulestore.Event {
	return &schedulestore.Event{
		Metadata: schedulestore.Metadata{Name: name},
		Spec: schedulestore.EventSpec{
			CalendarName: calendarName,
			Title:        "Event " + name,
			StartAt:      startAt,
			EndAt:        endAt,
			Status:       schedulestore.EventStatusScheduled,
		},
	}
}

func EventWithStatus(name, calendarName, startAt, status string) *schedulestore.Event {
	event := Event(name, calendarName, startAt, "")
	event.Spec.Status = status

	return event
}

func Log(name, actionType, operator, actionAt string) *schedulestore.Log {
	return &schedulestore.Log{
		Metadata: schedulestore.Metadata{Name: name},
		Spec: schedulestore.LogSpec{
			ActionType: actionType,
			Operator:   operator,
			ActionAt:   actionAt,
		},
	}
}
