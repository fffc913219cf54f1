package deleteevent

type Command struct {
	Name string
}

func (c Command) CommandType() string {
	return "DeleteEvent"
}

func BuildCommand(name string) Command {
	return Command{Name: name}
}
