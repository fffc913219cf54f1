package exportcalendar

import (
	"strings"

	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

const queryType = "ExportCalendar"

type Query struct {
	Calendar string
	From     string
	To       string
}

func BuildQuery(calendar, from, to string) Query {
	return Query{
		Calendar: strings.TrimSpace(calendar),
		From:     strings.TrimSpace(from),
		To:       strings.TrimSpace(to),
	}
}

func (q Query) QueryType() string {
	return queryType
}

func (q Query) Validate() error {
	if q.Calendar == "" {
		return shell.NewInputError("calendar must not be blank")
	}

	return nil
}
