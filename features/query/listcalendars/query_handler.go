package listcalendars

import (
	"context"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

// QueryHandler lists calendars from the store.
type QueryHandler struct {
	store shell.ListsRecords
}

// NewQueryHandler creates a QueryHandler reading from store.
func NewQueryHandler(store shell.ListsRecords) QueryHandler {
	return QueryHandler{store: store}
}

// Handle returns the requested page of calendars which carry no deletion marker.
// The store excludes those, so Total counts all live calendars across pages.
func (h QueryHandler) Handle(ctx context.Context, query Query) (schedulestore.ListResult[*schedulestore.Calendar], error) {
	if err := query.PageRequest.Sort.Validate(schedulestore.KindCalendar); err != nil {
		return schedulestore.ListResult[*schedulestore.Calendar]{}, shell.WrapInputError(err)
	}

	ctx = schedulestore.WithEventualConsistency(ctx)

	filter := schedulestore.BuildFilter().OnlyLive().Finalize()

	page, err := h.store.ListPage(ctx, schedulestore.KindCalendar, filter, query.PageRequest)
	if err != nil {
		return schedulestore.ListResult[*schedulestore.Calendar]{}, err
	}

	return schedulestore.ResultOf[*schedulestore.Calendar](page), nil
}
