package listupcomingevents

import (
	"strings"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

const queryType = "ListUpcomingEvents"

// Query selects the events of Calendar overlapping [From, To]. All three are required.
type Query struct {
	Calendar    string
	Status      string
	From        string
	To          string
	PageRequest schedulestore.PageRequest
}

func BuildQuery(calendar, from, to string, page, size int, sort ...string) Query {
	return Query{
		Calendar:    strings.TrimSpace(calendar),
		From:        strings.TrimSpace(from),
		To:          strings.TrimSpace(to),
		PageRequest: schedulestore.BuildPageRequest(page, size, schedulestore.ParseSort(sort...)),
	}
}

// WithStatus additionally restricts the query to events with the status.
func (q Query) WithStatus(status string) Query {
	q.Status = strings.TrimSpace(status)

	return q
}

func (q Query) QueryType() string {
	return queryType
}

// Validate fails with an input error if calendar, from or to is blank.
func (q Query) Validate() error {
	if q.Calendar == "" || q.From == "" || q.To == "" {
		return shell.NewInputError("calendar/from/to must not be blank")
	}

	return nil
}
