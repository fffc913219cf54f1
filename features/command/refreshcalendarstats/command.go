package refreshcalendarstats

type Command struct {
	CalendarName string
}

func (c Command) CommandType() string {
	return "RefreshCalendarStats"
}

func BuildCommand(calendarName string) Command {
	return Command{CalendarName: calendarName}
}
