package memengine

import (
	"errors"
	"time"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

var ErrNilClock = errors.New("nil clock supplied")
var ErrEmptySnapshotPath = errors.New("empty snapshot file path supplied")

// Option defines a functional option for configuring RecordStore.
type Option func(*RecordStore) error

// WithLogger sets the logger for the RecordStore.
func WithLogger(logger schedulestore.Logger) Option {
	return func(rs *RecordStore) error {
		rs.logger = logger

		return nil
	}
}

// WithContextualLogger sets the context-aware logger, it takes precedence over the Logger.
func WithContextualLogger(logger schedulestore.ContextualLogger) Option {
	return func(rs *RecordStore) error {
		rs.contextualLogger = logger

		return nil
	}
}

// WithClock sets the clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(rs *RecordStore) error {
		if now == nil {
			return ErrNilClock
		}

		rs.now = now

		return nil
	}
}

// WithSnapshotFile enables persistence to the given JSON file.
// Existing records in the file are loaded when the RecordStore is created.
func WithSnapshotFile(path string) Option {
	return func(rs *RecordStore) error {
		if path == "" {
			return ErrEmptySnapshotPath
		}

		rs.snapshots = NewSnapshotFile(path)

		return nil
	}
}

// WithRecords seeds the RecordStore with records as they are, keeping their metadata.
// Records with a blank name are rejected.
func WithRecords(records ...schedulestore.Record) Option {
	return func(rs *RecordStore) error {
		for _, record := range records {
			if record == nil {
				return schedulestore.ErrNilRecord
			}

			if record.Meta().Name == "" {
				return schedulestore.ErrMissingRecordName
			}

			rs.put(record.CloneRecord())
		}

		return nil
	}
}
