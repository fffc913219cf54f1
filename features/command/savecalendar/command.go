package savecalendar

import (
	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

type Command struct {
	Name string
	Spec schedulestore.CalendarSpec
}

func (c Command) CommandType() string {
	return "SaveCalendar"
}

func BuildCommand(name string, spec schedulestore.CalendarSpec) Command {
	return Command{Name: name, Spec: spec}
}
