package listevents

import (
	"strings"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

const queryType = "ListEvents"

// Query selects a page of events. Blank criteria do not restrict the result.
type Query struct {
	Calendar    string
	Status      string
	From        string
	To          string
	PageRequest schedulestore.PageRequest
}

func BuildQuery(calendar, status, from, to string, page, size int, sort ...string) Query {
	return Query{
		Calendar:    strings.TrimSpace(calendar),
		Status:      strings.TrimSpace(status),
		From:        strings.TrimSpace(from),
		To:          strings.TrimSpace(to),
		PageRequest: schedulestore.BuildPageRequest(page, size, schedulestore.ParseSort(sort...)),
	}
}

func (q Query) QueryType() string {
	return queryType
}

// BuildFilter creates the store filter for calendar and status.
func BuildFilter(calendar, status string) schedulestore.Filter {
	return schedulestore.BuildFilter().
		AndEqual(schedulestore.FieldEventCalendarName, calendar).
		AndEqual(schedulestore.FieldEventStatus, status).
		Finalize()
}
