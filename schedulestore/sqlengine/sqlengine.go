package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/schedulestore/sqlengine/internal/adapters"
)

var ErrNilDatabaseConnection = errors.New("nil database connection supplied")
var ErrBuildingQueryFailed = errors.New("building the SQL query failed")
var ErrQueryingRecordsFailed = errors.New("querying records failed")
var ErrWritingRecordFailed = errors.New("writing record failed")
var ErrScanningDBRowFailed = errors.New("scanning the database row failed")
var ErrGettingRowsAffectedFailed = errors.New("getting rows affected failed")
var ErrEncodingRecordFailed = errors.New("encoding the record body failed")
var ErrDecodingRecordFailed = errors.New("decoding the record body failed")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultTableName          = "schedule_records"
	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database execution failed"
	logMsgCloseRowsFailed     = "failed to close database rows"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgDecodeRecordFailed  = "failed to decode record body"
	logMsgRowsAffectedFailed  = "failed to get rows affected count"
	logMsgQueryCompleted      = "query completed"
	logMsgRecordCreated       = "record created"
	logMsgRecordUpdated       = "record updated"
	logMsgAlreadyExists       = "record already exists"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logMsgSchemaEnsured       = "schema ensured"
	logMsgSQLExecuted         = "executed sql for: "
	logMsgOperation           = "schedulestore operation: "
	logAttrError              = "error"
	logAttrQuery              = "query"
	logAttrKind               = "kind"
	logAttrName               = "name"
	logAttrVersion            = "version"
	logAttrRecordCount        = "record_count"
	logAttrDurationMS         = "duration_ms"
	logAttrTable              = "table"
	logActionQuery            = "query"
	logActionCount            = "count"
	logActionCreate           = "create"
	logActionUpdate           = "update"
	logActionSchema           = "schema"
	colKind                   = "kind"
	colName                   = "name"
	colVersion                = "version"
	colCreatedAtNS            = "created_at_ns"
	colDisplayName            = "display_name"
	colCalendarName           = "calendar_name"
	colStartAt                = "start_at"
	colStatus                 = "status"
	colRelatedPostName        = "related_post_name"
	colActionType             = "action_type"
	colOperator               = "operator"
	colActionAt               = "action_at"
	colDeleting               = "deleting"
	colBody                   = "body"
	castJsonb                 = "?::jsonb"
	matchNothing              = "1 = 0"
	notExists                 = "NOT EXISTS ?"
	selectOne                 = "1"
)

// fieldColumns maps the index fields onto their columns. metadata.creationTimestamp is stored as
// Unix nanoseconds so that it sorts chronologically.
var fieldColumns = map[schedulestore.FieldName]string{
	schedulestore.FieldMetadataName:        colName,
	schedulestore.FieldCreationTimestamp:   colCreatedAtNS,
	schedulestore.FieldCalendarDisplayName: colDisplayName,
	schedulestore.FieldEventCalendarName:   colCalendarName,
	schedulestore.FieldEventStartAt:        colStartAt,
	schedulestore.FieldEventStatus:         colStatus,
	schedulestore.FieldEventRelatedPost:    colRelatedPostName,
	schedulestore.FieldLogActionType:       colActionType,
	schedulestore.FieldLogOperator:         colOperator,
	schedulestore.FieldLogActionAt:         colActionAt,
}

type sqlQueryString = string

type recordRow struct {
	body        []byte
	version     int64
	createdAtNS int64
}

// RecordStore stores schedule records in a SQL table, see the package documentation.
type RecordStore struct {
	db               adapters.DBAdapter
	dialect          Dialect
	tableName        string
	now              func() time.Time
	logger           schedulestore.Logger
	contextualLogger schedulestore.ContextualLogger
	metricsCollector schedulestore.MetricsCollector
	tracingCollector schedulestore.TracingCollector
}

// NewRecordStoreFromPGXPool creates a RecordStore on a pgx pool, the dialect is DialectPostgres.
func NewRecordStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (RecordStore, error) {
	if db == nil {
		return RecordStore{}, ErrNilDatabaseConnection
	}

	return newRecordStore(adapters.NewPGXAdapter(db), options...)
}

// NewRecordStoreFromPGXPoolAndReplica creates a RecordStore that reads from the replica when the context
// carries schedulestore.EventualConsistency.
func NewRecordStoreFromPGXPoolAndReplica(primary, replica *pgxpool.Pool, options ...Option) (RecordStore, error) {
	if primary == nil || replica == nil {
		return RecordStore{}, ErrNilDatabaseConnection
	}

	return newRecordStore(adapters.NewPGXAdapterWithReplica(primary, replica), options...)
}

// NewRecordStoreFromSQLDB creates a RecordStore on a sql.DB, e.g. with the lib/pq or the sqlite3 driver.
func NewRecordStoreFromSQLDB(db *sql.DB, options ...Option) (RecordStore, error) {
	if db == nil {
		return RecordStore{}, ErrNilDatabaseConnection
	}

	return newRecordStore(adapters.NewSQLAdapter(db), options...)
}

// NewRecordStoreFromSQLX creates a RecordStore on a sqlx.DB.
func NewRecordStoreFromSQLX(db *sqlx.DB, options ...Option) (RecordStore, error) {
	if db == nil {
		return RecordStore{}, ErrNilDatabaseConnection
	}

	return newRecordStore(adapters.NewSQLXAdapter(db), options...)
}

func newRecordStore(db adapters.DBAdapter, options ...Option) (RecordStore, error) {
	rs := RecordStore{
		db:        db,
		dialect:   DialectPostgres,
		tableName: defaultTableName,
		now:       time.Now,
	}

	for _, option := range options {
		if err := option(&rs); err != nil {
			return RecordStore{}, err
		}
	}

	return rs, nil
}

// TableName returns the name of the table the store works on.
func (rs RecordStore) TableName() string {
	return rs.tableName
}

// Fetch returns the record or schedulestore.ErrRecordNotFound.
func (rs RecordStore) Fetch(ctx context.Context, kind schedulestore.Kind, name string) (schedulestore.Record, error) {
	if !kind.Valid() {
		return nil, schedulestore.ErrUnknownRecordKind
	}

	op, ctx := rs.startOperation(ctx, operationFetch, kind)

	sqlQuery, err := rs.buildFetchQuery(kind, name)
	if err != nil {
		op.finish(err)
		return nil, err
	}

	records, err := rs.queryRecords(ctx, kind, sqlQuery)
	if err != nil {
		op.finish(err)
		return nil, err
	}

	if len(records) == 0 {
		err = fmt.Errorf("%w: %s %q", schedulestore.ErrRecordNotFound, kind, name)
		op.finish(err)

		return nil, err
	}

	op.finish(nil)

	return records[0], nil
}

// ListAll returns all matching records in the requested order, records with equal sort keys are ordered by name.
func (rs RecordStore) ListAll(
	ctx context.Context,
	kind schedulestore.Kind,
	filter schedulestore.Filter,
	sort schedulestore.Sort,
) (schedulestore.Records, error) {

	if err := rs.validateListInput(kind, sort); err != nil {
		return nil, err
	}

	op, ctx := rs.startOperation(ctx, operationList, kind)

	sqlQuery, err := rs.buildSelectQuery(kind, filter, sort, schedulestore.PageRequest{})
	if err != nil {
		op.finish(err)
		return nil, err
	}

	records, err := rs.queryRecords(ctx, kind, sqlQuery)
	op.finish(err)

	return records, err
}

// ListPage returns one page of the matching records. Total counts all matching records.
func (rs RecordStore) ListPage(
	ctx context.Context,
	kind schedulestore.Kind,
	filter schedulestore.Filter,
	page schedulestore.PageRequest,
) (schedulestore.ListResult[schedulestore.Record], error) {

	var empty schedulestore.ListResult[schedulestore.Record]

	if err := rs.validateListInput(kind, page.Sort); err != nil {
		return empty, err
	}

	op, ctx := rs.startOperation(ctx, operationList, kind)

	countQuery, err := rs.buildCountQuery(kind, filter)
	if err != nil {
		op.finish(err)
		return empty, err
	}

	total, err := rs.queryCount(ctx, countQuery)
	if err != nil {
		op.finish(err)
		return empty, err
	}

	sqlQuery, err := rs.buildSelectQuery(kind, filter, page.Sort, page)
	if err != nil {
		op.finish(err)
		return empty, err
	}

	records, err := rs.queryRecords(ctx, kind, sqlQuery)
	if err != nil {
		op.finish(err)
		return empty, err
	}

	op.finish(nil)

	return schedulestore.ListResult[schedulestore.Record]{
		Page:  page.Page,
		Size:  page.Size,
		Total: total,
		Items: records,
	}, nil
}

func (rs RecordStore) validateListInput(kind schedulestore.Kind, sort schedulestore.Sort) error {
	if !kind.Valid() {
		return schedulestore.ErrUnknownRecordKind
	}

	return sort.Validate(kind)
}

// Create inserts the record with version 1 and a fresh creation timestamp.
// A blank name is generated from metadata.generateName.
func (rs RecordStore) Create(ctx context.Context, record schedulestore.Record) (schedulestore.Record, error) {
	if record == nil {
		return nil, schedulestore.ErrNilRecord
	}

	if !record.Kind().Valid() {
		return nil, schedulestore.ErrUnknownRecordKind
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

	op, ctx := rs.startOperation(ctx, operationCreate, created.Kind())

	sqlQuery, err := rs.buildInsertQuery(created)
	if err != nil {
		op.finish(err)
		return nil, err
	}

	rowsAffected, err := rs.execWrite(ctx, sqlQuery, logActionCreate)
	if err != nil {
		op.finish(err)
		return nil, err
	}

	if rowsAffected == 0 {
		rs.logInfo(ctx, logMsgOperation+logMsgAlreadyExists, logAttrKind, string(created.Kind()), logAttrName, meta.Name)
		err = fmt.Errorf("%w: %s %q", schedulestore.ErrRecordAlreadyExists, created.Kind(), meta.Name)
		op.finish(err)

		return nil, err
	}

	rs.logInfo(ctx, logMsgOperation+logMsgRecordCreated, logAttrKind, string(created.Kind()), logAttrName, meta.Name)
	op.finish(nil)

	return created, nil
}

// Update writes the record if its version is still the stored version and increments the version.
// The creation timestamp is kept from the stored record.
func (rs RecordStore) Update(ctx context.Context, record schedulestore.Record) (schedulestore.Record, error) {
	if record == nil {
		return nil, schedulestore.ErrNilRecord
	}

	if !record.Kind().Valid() {
		return nil, schedulestore.ErrUnknownRecordKind
	}

	updated := record.CloneRecord()
	meta := updated.Meta()
	expectedVersion := meta.Version

	op, ctx := rs.startOperation(ctx, operationUpdate, updated.Kind())

	// the creation timestamp never changes, reading it upfront also tells whether the record exists
	createdAt, err := rs.queryCreationTimestamp(ctx, updated.Kind(), meta.Name)
	if err != nil {
		op.finish(err)
		return nil, err
	}

	meta.Version = expectedVersion + 1
	meta.CreationTimestamp = createdAt

	sqlQuery, err := rs.buildUpdateQuery(updated, expectedVersion)
	if err != nil {
		op.finish(err)
		return nil, err
	}

	rowsAffected, err := rs.execWrite(ctx, sqlQuery, logActionUpdate)
	if err != nil {
		op.finish(err)
		return nil, err
	}

	if rowsAffected == 0 {
		rs.logInfo(
			ctx,
			logMsgOperation+logMsgConcurrencyConflict,
			logAttrKind, string(updated.Kind()),
			logAttrName, meta.Name,
			logAttrVersion, expectedVersion,
		)

		err = fmt.Errorf("%w: %s %q expected version %d", schedulestore.ErrConcurrencyConflict, updated.Kind(), meta.Name, expectedVersion)
		op.finish(err)

		return nil, err
	}

	rs.logInfo(ctx, logMsgOperation+logMsgRecordUpdated, logAttrKind, string(updated.Kind()), logAttrName, meta.Name, logAttrVersion, meta.Version)
	op.finish(nil)

	return updated, nil
}

func (rs RecordStore) queryCreationTimestamp(ctx context.Context, kind schedulestore.Kind, name string) (time.Time, error) {
	selectStmt := goqu.Dialect(string(rs.dialect)).
		From(rs.tableName).
		Select(colCreatedAtNS).
		Where(goqu.C(colKind).Eq(string(kind)), goqu.C(colName).Eq(name))

	sqlQuery, err := rs.toSQL(selectStmt)
	if err != nil {
		return time.Time{}, err
	}

	rows, err := rs.executeQuery(ctx, sqlQuery, logActionQuery)
	if err != nil {
		return time.Time{}, err
	}
	defer rs.closeRows(ctx, rows)

	if !rows.Next() {
		if rowsErr := rows.Err(); rowsErr != nil {
			return time.Time{}, errors.Join(ErrQueryingRecordsFailed, rowsErr)
		}

		return time.Time{}, fmt.Errorf("%w: %s %q", schedulestore.ErrRecordNotFound, kind, name)
	}

	var createdAtNS int64
	if scanErr := rows.Scan(&createdAtNS); scanErr != nil {
		rs.logError(ctx, logMsgScanRowFailed, scanErr)
		return time.Time{}, errors.Join(ErrScanningDBRowFailed, scanErr)
	}

	return time.Unix(0, createdAtNS).UTC(), nil
}

func (rs RecordStore) queryCount(ctx context.Context, sqlQuery sqlQueryString) (int64, error) {
	rows, err := rs.executeQuery(ctx, sqlQuery, logActionCount)
	if err != nil {
		return 0, err
	}
	defer rs.closeRows(ctx, rows)

	var total int64
	if rows.Next() {
		if scanErr := rows.Scan(&total); scanErr != nil {
			rs.logError(ctx, logMsgScanRowFailed, scanErr)
			return 0, errors.Join(ErrScanningDBRowFailed, scanErr)
		}
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return 0, errors.Join(ErrQueryingRecordsFailed, rowsErr)
	}

	return total, nil
}

func (rs RecordStore) queryRecords(ctx context.Context, kind schedulestore.Kind, sqlQuery sqlQueryString) (schedulestore.Records, error) {
	start := time.Now()

	rows, err := rs.executeQuery(ctx, sqlQuery, logActionQuery)
	if err != nil {
		return nil, err
	}
	defer rs.closeRows(ctx, rows)

	records := make(schedulestore.Records, 0)
	row := recordRow{}

	for rows.Next() {
		if scanErr := rows.Scan(&row.body, &row.version, &row.createdAtNS); scanErr != nil {
			rs.logError(ctx, logMsgScanRowFailed, scanErr)
			return nil, errors.Join(ErrScanningDBRowFailed, scanErr)
		}

		record, decodeErr := decodeRecord(kind, row)
		if decodeErr != nil {
			rs.logError(ctx, logMsgDecodeRecordFailed, decodeErr, logAttrKind, string(kind))
			return nil, decodeErr
		}

		records = append(records, record)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		rs.logError(ctx, logMsgDBQueryFailed, rowsErr)
		return nil, errors.Join(ErrQueryingRecordsFailed, rowsErr)
	}

	rs.logInfo(
		ctx,
		logMsgOperation+logMsgQueryCompleted,
		logAttrKind, string(kind),
		logAttrRecordCount, len(records),
		logAttrDurationMS, toMilliseconds(time.Since(start)),
	)

	return records, nil
}

// executeQuery executes the SQL query and logs it with its timing.
func (rs RecordStore) executeQuery(ctx context.Context, sqlQuery sqlQueryString, action string) (adapters.DBRows, error) {
	start := time.Now()
	rows, err := rs.db.Query(ctx, sqlQuery)
	rs.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if err != nil {
		rs.logError(ctx, logMsgDBQueryFailed, err, logAttrQuery, sqlQuery)
		return nil, errors.Join(ErrQueryingRecordsFailed, err)
	}

	return rows, nil
}

// execWrite executes an INSERT or UPDATE statement and returns the number of affected rows.
func (rs RecordStore) execWrite(ctx context.Context, sqlQuery sqlQueryString, action string) (int64, error) {
	start := time.Now()
	result, err := rs.db.Exec(ctx, sqlQuery)
	rs.logQueryWithDuration(ctx, sqlQuery, action, time.Since(start))

	if err != nil {
		rs.logError(ctx, logMsgDBExecFailed, err, logAttrQuery, sqlQuery)
		return 0, errors.Join(ErrWritingRecordFailed, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		rs.logError(ctx, logMsgRowsAffectedFailed, err)
		return 0, errors.Join(ErrGettingRowsAffectedFailed, err)
	}

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (rs RecordStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		rs.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

func decodeRecord(kind schedulestore.Kind, row recordRow) (schedulestore.Record, error) {
	record, err := schedulestore.NewRecord(kind)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(row.body, record); err != nil {
		return nil, errors.Join(ErrDecodingRecordFailed, err)
	}

	// the columns are authoritative for the values the store maintains
	meta := record.Meta()
	meta.Version = row.version
	meta.CreationTimestamp = time.Unix(0, row.createdAtNS).UTC()

	return record, nil
}
