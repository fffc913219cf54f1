package listevents

import (
	"context"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

// QueryHandler lists events: Filter -> ListPage -> Project.
type QueryHandler struct {
	store shell.ListsRecords
}

func NewQueryHandler(store shell.ListsRecords) QueryHandler {
	return QueryHandler{store: store}
}

func (h QueryHandler) Handle(ctx context.Context, query Query) (schedulestore.ListResult[*schedulestore.Event], error) {
	return ListOverlapping(ctx, h.store, query.Calendar, query.Status, query.From, query.To, query.PageRequest)
}

// ListOverlapping is the list workflow shared with the upcoming-events query.
func ListOverlapping(
	ctx context.Context,
	store shell.ListsRecords,
	calendar string,
	status string,
	from string,
	to string,
	pageRequest schedulestore.PageRequest,
) (schedulestore.ListResult[*schedulestore.Event], error) {

	if err := pageRequest.Sort.Validate(schedulestore.KindEvent); err != nil {
		return schedulestore.ListResult[*schedulestore.Event]{}, shell.WrapInputError(err)
	}

	ctx = schedulestore.WithEventualConsistency(ctx)

	page, err := store.ListPage(ctx, schedulestore.KindEvent, BuildFilter(calendar, status), pageRequest)
	if err != nil {
		return schedulestore.ListResult[*schedulestore.Event]{}, err
	}

	return Project(page, from, to), nil
}
