package saveevent

import (
	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

type Command struct {
	Name string
	Spec schedulestore.EventSpec
}

func (c Command) CommandType() string {
	return "SaveEvent"
}

func BuildCommand(name string, spec schedulestore.EventSpec) Command {
	return Command{Name: name, Spec: spec}
}
