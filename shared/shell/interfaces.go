package shell

import (
	"context"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

// Query represents the contract for all query types.
// The QueryType method enables polymorphic handling and observability instrumentation.
type Query interface {
	QueryType() string
}

// CoreQueryHandler defines the contract for components that process queries.
// Implementations should focus purely on business logic without observability concerns,
// they are designed to be wrapped with the observable.QueryWrapper.
type CoreQueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}

// Command represents the contract for all command types.
// The CommandType method enables polymorphic handling and observability instrumentation.
type Command interface {
	CommandType() string
}

// CoreCommandHandler defines the contract for components that process commands.
// Handlers return HandlerResult containing business outcomes (idempotency) and execution metadata (retry info).
// They are designed to be wrapped with the observable.CommandWrapper.
type CoreCommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}

// FetchesRecords is the read-one capability of a schedulestore.RecordStore.
type FetchesRecords interface {
	Fetch(ctx context.Context, kind schedulestore.Kind, name string) (schedulestore.Record, error)
}

// ListsRecords is the list capability of a schedulestore.RecordStore.
type ListsRecords interface {
	ListAll(ctx context.Context, kind schedulestore.Kind, filter schedulestore.Filter, sort schedulestore.Sort) (schedulestore.Records, error)
	ListPage(ctx context.Context, kind schedulestore.Kind, filter schedulestore.Filter, page schedulestore.PageRequest) (schedulestore.ListResult[schedulestore.Record], error)
}

// CreatesRecords is the create capability of a schedulestore.RecordStore.
type CreatesRecords interface {
	Create(ctx context.Context, record schedulestore.Record) (schedulestore.Record, error)
}

// UpdatesRecords is the optimistic update capability of a schedulestore.RecordStore.
type UpdatesRecords interface {
	Update(ctx context.Context, record schedulestore.Record) (schedulestore.Record, error)
}

// EventChangeListener is notified after an event was written. before is nil for a created event.
type EventChangeListener interface {
	HandleEventChange(ctx context.Context, before, after *schedulestore.Event) ([]HandlerResult, error)
}
