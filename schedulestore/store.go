package schedulestore

import (
	"context"
)

// RecordStore is the storage contract implemented by the engines.
//
// All list operations return records regardless of their deletion marker, callers decide whether
// soft-deleted records are of interest (see LiveRecordsOf).
type RecordStore interface {
	// Fetch returns the record or ErrRecordNotFound.
	Fetch(ctx context.Context, kind Kind, name string) (Record, error)

	// ListAll returns all records of the kind that match the filter, sorted by sort.
	ListAll(ctx context.Context, kind Kind, filter Filter, sort Sort) (Records, error)

	// ListPage returns one page of the records of the kind that match the filter.
	ListPage(ctx context.Context, kind Kind, filter Filter, page PageRequest) (ListResult[Record], error)

	// Create stores a new record with version 1. A blank name is generated from metadata.generateName.
	// It fails with ErrRecordAlreadyExists or ErrMissingRecordName.
	Create(ctx context.Context, record Record) (Record, error)

	// Update replaces the record if its version equals the stored version, incrementing the version.
	// It fails with ErrRecordNotFound or ErrConcurrencyConflict.
	Update(ctx context.Context, record Record) (Record, error)
}
