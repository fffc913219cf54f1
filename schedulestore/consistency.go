package schedulestore

import "context"

// ConsistencyLevel defines the consistency requirements for RecordStore operations.
type ConsistencyLevel int

const (
	// StrongConsistency requires reads from the primary database to ensure
	// read-after-write consistency. This is the default, so read-check-write
	// sequences like refreshing calendar statistics see their own writes.
	StrongConsistency ConsistencyLevel = iota

	// EventualConsistency allows reads from replica databases. Suitable for
	// list queries that can tolerate slightly stale data.
	EventualConsistency
)

// contextKey is a private type to prevent context key collisions.
type contextKey string

// ConsistencyLevelKey is the context key used to store consistency level preferences.
const ConsistencyLevelKey contextKey = "schedulestore.consistency_level"

// WithStrongConsistency returns a context that signals RecordStore operations
// should use the primary database.
//
// Example usage:
//
//	ctx = schedulestore.WithStrongConsistency(ctx)
//	record, err := store.Fetch(ctx, schedulestore.KindCalendar, name)
func WithStrongConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, StrongConsistency)
}

// WithEventualConsistency returns a context that signals RecordStore operations
// may use replica databases.
//
// Example usage:
//
//	ctx = schedulestore.WithEventualConsistency(ctx)
//	page, err := store.ListPage(ctx, schedulestore.KindEvent, filter, pageRequest)
func WithEventualConsistency(ctx context.Context) context.Context {
	return context.WithValue(ctx, ConsistencyLevelKey, EventualConsistency)
}

// GetConsistencyLevel extracts the consistency level from the context.
// If no consistency level is set, it returns StrongConsistency.
func GetConsistencyLevel(ctx context.Context) ConsistencyLevel {
	if level, ok := ctx.Value(ConsistencyLevelKey).(ConsistencyLevel); ok {
		return level
	}

	return StrongConsistency
}

// String provides a string representation of ConsistencyLevel for logging and debugging.
func (c ConsistencyLevel) String() string {
	switch c {
	case StrongConsistency:
		return "strong"
	case EventualConsistency:
		return "eventual"
	default:
		return "unknown"
	}
}
