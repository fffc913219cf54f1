package listlogs

import (
	"strings"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

const queryType = "ListLogs"

// Query selects a page of logs. Dates are "YYYY-MM-DD", blank criteria do not restrict the result.
type Query struct {
	ActionType  string
	Operator    string
	Keyword     string
	FromDate    string
	ToDate      string
	PageRequest schedulestore.PageRequest
}

func BuildQuery(actionType, operator, keyword, fromDate, toDate string, page, size int, sort ...string) Query {
	return Query{
		ActionType:  strings.TrimSpace(actionType),
		Operator:    strings.TrimSpace(operator),
		Keyword:     strings.TrimSpace(keyword),
		FromDate:    strings.TrimSpace(fromDate),
		ToDate:      strings.TrimSpace(toDate),
		PageRequest: schedulestore.BuildPageRequest(page, size, schedulestore.ParseSort(sort...)),
	}
}

func (q Query) QueryType() string {
	return queryType
}

func BuildFilter(actionType, operator string) schedulestore.Filter {
	return schedulestore.BuildFilter().
		AndEqual(schedulestore.FieldLogActionType, actionType).
		AndEqual(schedulestore.FieldLogOperator, operator).
		Finalize()
}
