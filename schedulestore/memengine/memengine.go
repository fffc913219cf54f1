package memengine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

var ErrLoadingSnapshotFailed = errors.New("loading snapshot failed")
var ErrSavingSnapshotFailed = errors.New("saving snapshot failed")

const (
	logMsgRecordCreated  = "memengine: record created"
	logMsgRecordUpdated  = "memengine: record updated"
	logMsgUpdateConflict = "memengine: update rejected, stale version"
	logMsgSnapshotFailed = "memengine: saving snapshot failed"
	logMsgSnapshotLoaded = "memengine: snapshot loaded"
	logAttrKind          = "kind"
	logAttrName          = "name"
	logAttrVersion       = "version"
	logAttrStoredVersion = "stored_version"
	logAttrRecordCount   = "record_count"
	logAttrError         = "error"
)

// RecordStore is the in-memory implementation of schedulestore.RecordStore.
type RecordStore struct {
	mu               sync.RWMutex
	records          map[schedulestore.Kind]map[string]schedulestore.Record
	generation       uint64
	snapshots        *SnapshotFile
	now              func() time.Time
	logger           schedulestore.Logger
	contextualLogger schedulestore.ContextualLogger
}

// NewRecordStore creates a RecordStore, restoring the snapshot file when one is configured.
func NewRecordStore(options ...Option) (*RecordStore, error) {
	rs := &RecordStore{
		records: make(map[schedulestore.Kind]map[string]schedulestore.Record),
		now:     time.Now,
	}

	for _, kind := range schedulestore.Kinds() {
		rs.records[kind] = make(map[string]schedulestore.Record)
	}

	for _, option := range options {
		if err := option(rs); err != nil {
			return nil, err
		}
	}

	if rs.snapshots != nil {
		snapshot, err := rs.snapshots.Load()
		if err != nil {
			return nil, errors.Join(ErrLoadingSnapshotFailed, err)
		}

		for _, record := range snapshot.Records() {
			rs.put(record)
		}

		rs.generation = snapshot.Generation
		rs.logInfo(context.Background(), logMsgSnapshotLoaded, logAttrRecordCount, len(snapshot.Records()))
	}

	return rs, nil
}

// Fetch returns a copy of the record or schedulestore.ErrRecordNotFound.
func (rs *RecordStore) Fetch(ctx context.Context, kind schedulestore.Kind, name string) (schedulestore.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !kind.Valid() {
		return nil, schedulestore.ErrUnknownRecordKind
	}

	rs.mu.RLock()
	defer rs.mu.RUnlock()

	record, ok := rs.records[kind][name]
	if !ok {
		return nil, fmt.Errorf("%w: %s %q", schedulestore.ErrRecordNotFound, kind, name)
	}

	return record.CloneRecord(), nil
}

// ListAll returns copies of all matching records in the requested order.
func (rs *RecordStore) ListAll(
	ctx context.Context,
	kind schedulestore.Kind,
	filter schedulestore.Filter,
	sort schedulestore.Sort,
) (schedulestore.Records, error) {

	matching, err := rs.matching(ctx, kind, filter, sort)
	if err != nil {
		return nil, err
	}

	schedulestore.SortRecords(matching, sort)

	return matching, nil
}

// ListPage returns one page of copies of the matching records.
func (rs *RecordStore) ListPage(
	ctx context.Context,
	kind schedulestore.Kind,
	filter schedulestore.Filter,
	page schedulestore.PageRequest,
) (schedulestore.ListResult[schedulestore.Record], error) {

	matching, err := rs.matching(ctx, kind, filter, page.Sort)
	if err != nil {
		return schedulestore.ListResult[schedulestore.Record]{}, err
	}

	return schedulestore.PaginateRecords(matching, page), nil
}

func (rs *RecordStore) matching(
	ctx context.Context,
	kind schedulestore.Kind,
	filter schedulestore.Filter,
	sort schedulestore.Sort,
) (schedulestore.Records, error) {

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !kind.Valid() {
		return nil, schedulestore.ErrUnknownRecordKind
	}

	if err := sort.Validate(kind); err != nil {
		return nil, err
	}

	rs.mu.RLock()
	defer rs.mu.RUnlock()

	matching := make(schedulestore.Records, 0)
	for _, record := range rs.records[kind] {
		if filter.Matches(record) {
			matching = append(matching, record.CloneRecord())
		}
	}

	// map iteration order is random, the name makes listings deterministic for equal sort keys
	schedulestore.SortRecords(matching, schedulestore.Sort{{Field: schedulestore.FieldMetadataName}})

	return matching, nil
}

// Create stores a copy of the record with version 1 and a fresh creation timestamp.
func (rs *RecordStore) Create(ctx context.Context, record schedulestore.Record) (schedulestore.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if record == nil {
		return nil, schedulestore.ErrNilRecord
	}

	created := record.CloneRecord()
	meta := created.Meta()

	if meta.Name == "" {
		if meta.GenerateName == "" {
			return nil, schedulestore.ErrMissingRecordName
		}

		meta.Name = schedulestore.GenerateName(meta.GenerateName)
	}

	meta.Version = 1
	meta.CreationTimestamp = rs.now().UTC()

	rs.mu.Lock()

	if _, exists := rs.records[created.Kind()][meta.Name]; exists {
		rs.mu.Unlock()

		return nil, fmt.Errorf("%w: %s %q", schedulestore.ErrRecordAlreadyExists, created.Kind(), meta.Name)
	}

	rs.put(created)
	snapshot := rs.snapshotLocked()

	rs.mu.Unlock()

	rs.logDebug(ctx, logMsgRecordCreated, logAttrKind, string(created.Kind()), logAttrName, meta.Name)
	rs.save(ctx, snapshot)

	return created.CloneRecord(), nil
}

// Update replaces the stored record if the versions match and increments the version.
// The creation timestamp is kept from the stored record.
func (rs *RecordStore) Update(ctx context.Context, record schedulestore.Record) (schedulestore.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if record == nil {
		return nil, schedulestore.ErrNilRecord
	}

	updated := record.CloneRecord()
	meta := updated.Meta()

	rs.mu.Lock()

	stored, exists := rs.records[updated.Kind()][meta.Name]
	if !exists {
		rs.mu.Unlock()

		return nil, fmt.Errorf("%w: %s %q", schedulestore.ErrRecordNotFound, updated.Kind(), meta.Name)
	}

	storedVersion := stored.Meta().Version
	if storedVersion != meta.Version {
		rs.mu.Unlock()

		rs.logDebug(
			ctx,
			logMsgUpdateConflict,
			logAttrKind, string(updated.Kind()),
			logAttrName, meta.Name,
			logAttrVersion, meta.Version,
			logAttrStoredVersion, storedVersion,
		)

		return nil, fmt.Errorf(
			"%w: %s %q has version %d, got %d",
			schedulestore.ErrConcurrencyConflict, updated.Kind(), meta.Name, storedVersion, meta.Version,
		)
	}

	meta.Version = storedVersion + 1
	meta.CreationTimestamp = stored.Meta().CreationTimestamp
	rs.put(updated)
	snapshot := rs.snapshotLocked()

	rs.mu.Unlock()

	rs.logDebug(ctx, logMsgRecordUpdated, logAttrKind, string(updated.Kind()), logAttrName, meta.Name, logAttrVersion, meta.Version)
	rs.save(ctx, snapshot)

	return updated.CloneRecord(), nil
}

// Snapshot returns a copy of all records.
func (rs *RecordStore) Snapshot() Snapshot {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	snapshot := Snapshot{Generation: rs.generation}
	rs.fillSnapshot(&snapshot)

	return snapshot
}

func (rs *RecordStore) put(record schedulestore.Record) {
	rs.records[record.Kind()][record.Meta().Name] = record
}

// snapshotLocked must be called with the write lock held.
func (rs *RecordStore) snapshotLocked() *Snapshot {
	rs.generation++

	if rs.snapshots == nil {
		return nil
	}

	snapshot := &Snapshot{Generation: rs.generation}
	rs.fillSnapshot(snapshot)

	return snapshot
}

func (rs *RecordStore) fillSnapshot(snapshot *Snapshot) {
	for _, record := range rs.records[schedulestore.KindCalendar] {
		snapshot.Calendars = append(snapshot.Calendars, record.(*schedulestore.Calendar).Clone())
	}

	for _, record := range rs.records[schedulestore.KindEvent] {
		snapshot.Events = append(snapshot.Events, record.(*schedulestore.Event).Clone())
	}

	for _, record := range rs.records[schedulestore.KindLog] {
		snapshot.Logs = append(snapshot.Logs, record.(*schedulestore.Log).Clone())
	}
}

// save persists the snapshot, failures are logged since the write itself already succeeded in memory.
func (rs *RecordStore) save(ctx context.Context, snapshot *Snapshot) {
	if snapshot == nil {
		return
	}

	if err := rs.snapshots.Save(*snapshot); err != nil {
		rs.logError(ctx, logMsgSnapshotFailed, logAttrError, errors.Join(ErrSavingSnapshotFailed, err).Error())
	}
}

func (rs *RecordStore) logDebug(ctx context.Context, msg string, args ...any) {
	if rs.contextualLogger != nil {
		rs.contextualLogger.DebugContext(ctx, msg, args...)
	} else if rs.logger != nil {
		rs.logger.Debug(msg, args...)
	}
}

func (rs *RecordStore) logInfo(ctx context.Context, msg string, args ...any) {
	if rs.contextualLogger != nil {
		rs.contextualLogger.InfoContext(ctx, msg, args...)
	} else if rs.logger != nil {
		rs.logger.Info(msg, args...)
	}
}

func (rs *RecordStore) logError(ctx context.Context, msg string, args ...any) {
	if rs.contextualLogger != nil {
		rs.contextualLogger.ErrorContext(ctx, msg, args...)
	} else if rs.logger != nil {
		rs.logger.Error(msg, args...)
	}
}
