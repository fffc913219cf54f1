package listcalendars

import (
	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

const queryType = "ListCalendars"

// Query selects a page of calendars. Sort parameters use the "field,asc|desc" format.
type Query struct {
	PageRequest schedulestore.PageRequest
}

// BuildQuery creates a Query. A size <= 0 lists all calendars.
func BuildQuery(page, size int, sort ...string) Query {
	return Query{
		PageRequest: schedulestore.BuildPageRequest(page, size, schedulestore.ParseSort(sort...)),
	}
}

func (q Query) QueryType() string {
	return queryType
}
