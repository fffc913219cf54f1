// Package memengine provides an in-memory implementation of schedulestore.RecordStore.
//
// Records are kept per kind in maps guarded by a sync.RWMutex and are deep-copied on
// the way in and out, so callers never share state with the store. Optimistic concurrency
// is enforced by comparing metadata.version on update.
//
// Optionally the store persists a JSON snapshot of all records to a file after every write
// and restores it on start, which makes it usable as a small single-process database:
//
//	store, err := memengine.NewRecordStore(
//		memengine.WithSnapshotFile("/var/lib/schedule/records.json"),
//		memengine.WithLogger(slog.Default()),
//	)
package memengine
