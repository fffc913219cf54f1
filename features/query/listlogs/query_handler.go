package listlogs

import (
	"context"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
)

type QueryHandler struct {
	store shell.ListsRecords
}

func NewQueryHandler(store shell.ListsRecords) QueryHandler {
	return QueryHandler{store: store}
}

// Handle executes Filter -> ListPage -> Project.
func (h QueryHandler) Handle(ctx context.Context, query Query) (schedulestore.ListResult[*schedulestore.Log], error) {
	if err := query.PageRequest.Sort.Validate(schedulestore.KindLog); err != nil {
		return schedulestore.ListResult[*schedulestore.Log]{}, shell.WrapInputError(err)
	}

	ctx = schedulestore.WithEventualConsistency(ctx)

	page, err := h.store.ListPage(ctx, schedulestore.KindLog, BuildFilter(query.ActionType, query.Operator), query.PageRequest)
	if err != nil {
		return schedulestore.ListResult[*schedulestore.Log]{}, err
	}

	return Project(page, query), nil
}
