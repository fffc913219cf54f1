package listupcomingevents

import (
	"context"

	"github.com/AntonStoeckl/schedulestore-go/features/query/listevents"
	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

// QueryHandler lists the events of one calendar which overlap a mandatory time window.
type QueryHandler struct {
	store shell.ListsRecords
}

// NewQueryHandler creates a QueryHandler reading from store.
func NewQueryHandler(store shell.ListsRecords) QueryHandler {
	return QueryHandler{store: store}
}

// Handle validates the query and then lists like listevents.
func (h QueryHandler) Handle(ctx context.Context, query Query) (schedulestore.ListResult[*schedulestore.Event], error) {
	if err := query.Validate(); err != nil {
		return schedulestore.ListResult[*schedulestore.Event]{}, err
	}

	return listevents.ListOverlapping(ctx, h.store, query.Calendar, query.Status, query.From, query.To, query.PageRequest)
}
