package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/schedulestore/sqlengine/internal/adapters"
	"github.com/AntonStoeckl/schedulestore-go/testutil/fixtures"
)

var errDatabaseDown = errors.New("database down")

// fakeAdapter answers queries with canned rows and records the statements it received.
type fakeAdapter struct {
	queries      []string
	execs        []string
	rows         [][]any
	queryErr     error
	execErr      error
	rowsAffected int64
}

func (f *fakeAdapter) Query(_ context.Context, query string) (adapters.DBRows, error) {
	f.queries = append(f.queries, query)
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	return &fakeRows{rows: f.rows, pos: -1}, nil
}

func (f *fakeAdapter) Exec(_ context.Context, query string) (adapters.DBResult, error) {
	f.execs = append(f.execs, query)
	if f.execErr != nil {
		return nil, f.execErr
	}

	return fakeResult(f.rowsAffected), nil
}

type fakeRows struct {
	rows [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	for i, d := range dest {
		switch target := d.(type) {
		case *int64:
			*target = r.rows[r.pos][i].(int64)
		case *[]byte:
			*target = r.rows[r.pos][i].([]byte)
		default:
			return fmt.Errorf("unsupported scan target %T", d)
		}
	}

	return nil
}

func (r *fakeRows) Err() error {
	return nil
}

func (r *fakeRows) Close() error {
	return nil
}

type fakeResult int64

func (r fakeResult) RowsAffected() (int64, error) {
	return int64(r), nil
}

func givenStoreOnFakeAdapter(t *testing.T, db *fakeAdapter) RecordStore {
	t.Helper()

	rs, err := newRecordStore(db)
	require.NoError(t, err)

	return rs
}

func Test_Update_ZeroRowsAffected_IsConcurrencyConflict(t *testing.T) {
	// arrange
	db := &fakeAdapter{rows: [][]any{{int64(1710057600000000000)}}, rowsAffected: 0}
	rs := givenStoreOnFakeAdapter(t, db)

	calendar := fixtures.Calendar("team", "Team")
	calendar.Metadata.Version = 3

	// act
	_, err := rs.Update(context.Background(), calendar)

	// assert
	assert.ErrorIs(t, err, schedulestore.ErrConcurrencyConflict)
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0], `"version" = 3`)
	assert.Contains(t, db.execs[0], `::jsonb`)
}

func Test_Update_MissingRow_IsNotFound(t *testing.T) {
	db := &fakeAdapter{}
	rs := givenStoreOnFakeAdapter(t, db)

	_, err := rs.Update(context.Background(), fixtures.Calendar("team", "Team"))

	assert.ErrorIs(t, err, schedulestore.ErrRecordNotFound)
	assert.Empty(t, db.execs)
}

func Test_Create_ZeroRowsAffected_IsAlreadyExists(t *testing.T) {
	db := &fakeAdapter{rowsAffected: 0}
	rs := givenStoreOnFakeAdapter(t, db)

	_, err := rs.Create(context.Background(), fixtures.Calendar("team", "Team"))

	assert.ErrorIs(t, err, schedulestore.ErrRecordAlreadyExists)
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0], "NOT EXISTS (SELECT 1")
}

func Test_DatabaseErrors_AreWrapped(t *testing.T) {
	db := &fakeAdapter{queryErr: errDatabaseDown, execErr: errDatabaseDown}
	rs := givenStoreOnFakeAdapter(t, db)

	_, err := rs.Fetch(context.Background(), schedulestore.KindCalendar, "team")
	assert.ErrorIs(t, err, ErrQueryingRecordsFailed)
	assert.ErrorIs(t, err, errDatabaseDown)

	_, err = rs.Create(context.Background(), fixtures.Calendar("team", "Team"))
	assert.ErrorIs(t, err, ErrWritingRecordFailed)
	assert.ErrorIs(t, err, errDatabaseDown)

	err = rs.EnsureSchema(context.Background())
	assert.ErrorIs(t, err, ErrEnsuringSchemaFailed)
}

func Test_Fetch_UndecodableBody(t *testing.T) {
	db := &fakeAdapter{rows: [][]any{{[]byte("{not json"), int64(1), int64(0)}}}
	rs := givenStoreOnFakeAdapter(t, db)

	_, err := rs.Fetch(context.Background(), schedulestore.KindCalendar, "team")

	assert.ErrorIs(t, err, ErrDecodingRecordFailed)
}

func Test_BuildSelectQuery_Postgres(t *testing.T) {
	// arrange
	rs := givenStoreOnFakeAdapter(t, &fakeAdapter{})
	filter := schedulestore.BuildFilter().
		AndEqual(schedulestore.FieldEventCalendarName, "team").
		AndEqual(schedulestore.FieldEventStatus, "scheduled").
		Finalize()

	// act
	sqlQuery, err := rs.buildSelectQuery(
		schedulestore.KindEvent,
		filter,
		schedulestore.ParseSort("spec.startAt,desc"),
		schedulestore.BuildPageRequest(3, 10, nil),
	)

	// assert
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `FROM "schedule_records"`)
	assert.Contains(t, sqlQuery, `"kind" = 'ScheduleEvent'`)
	assert.Contains(t, sqlQuery, `"calendar_name" = 'team'`)
	assert.Contains(t, sqlQuery, `"status" = 'scheduled'`)
	assert.Contains(t, sqlQuery, `ORDER BY "start_at" DESC, "name" ASC`)
	assert.Contains(t, sqlQuery, `LIMIT 10 OFFSET 20`)
}

func Test_WhereClause_CreationTimestamp(t *testing.T) {
	rs := givenStoreOnFakeAdapter(t, &fakeAdapter{})

	valid := schedulestore.BuildFilter().AndEqual(schedulestore.FieldCreationTimestamp, "2024-03-10T08:00:00Z").Finalize()
	sqlQuery, err := rs.buildCountQuery(schedulestore.KindLog, valid)
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `"created_at_ns" = 1710057600000000000`)

	invalid := schedulestore.BuildFilter().AndEqual(schedulestore.FieldCreationTimestamp, "yesterday").Finalize()
	sqlQuery, err = rs.buildCountQuery(schedulestore.KindLog, invalid)
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, matchNothing)
}

func Test_WhereClause_OnlyLive(t *testing.T) {
	rs := givenStoreOnFakeAdapter(t, &fakeAdapter{})

	sqlQuery, err := rs.buildCountQuery(schedulestore.KindCalendar, schedulestore.BuildFilter().OnlyLive().Finalize())
	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `"deleting" = 0`)

	sqlQuery, err = rs.buildCountQuery(schedulestore.KindCalendar, schedulestore.MatchingAnyRecord())
	require.NoError(t, err)
	assert.NotContains(t, sqlQuery, `"deleting"`)
}

func Test_SchemaStatements_PerDialect(t *testing.T) {
	postgres := givenStoreOnFakeAdapter(t, &fakeAdapter{})
	assert.Contains(t, postgres.SchemaStatements()[0], "JSONB")

	sqlite, err := newRecordStore(&fakeAdapter{}, WithDialect(DialectSQLite), WithTableName("records"))
	require.NoError(t, err)

	statements := sqlite.SchemaStatements()
	assert.Contains(t, statements[0], "CREATE TABLE IF NOT EXISTS records")
	assert.NotContains(t, statements[0], "JSONB")
	assert.Len(t, statements, 1+len(indexDDL))
}
