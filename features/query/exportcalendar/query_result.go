package exportcalendar

// Export is the rendered calendar.
type Export struct {
	CalendarName string
	EventCount   int
	Skipped      []string
	ICS          string
}
