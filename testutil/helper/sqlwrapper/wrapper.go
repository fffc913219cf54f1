// Package sqlwrapper opens the SQL engine against a real PostgreSQL for integration tests.
//
// The tests are skipped unless SCHEDULESTORE_TEST_DSN is set. ADAPTER_TYPE selects the adapter:
// pgxpool (default), sqldb or sqlx.
package sqlwrapper

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore/sqlengine"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell/config"
)

const (
	envDSN         = "SCHEDULESTORE_TEST_DSN"
	envAdapterType = "ADAPTER_TYPE"
	typePGXPool    = "pgxpool"
	typeSQLDB      = "sqldb"
	typeSQLX       = "sqlx"
	testTableName  = "schedule_records_test"

	truncateStatement = "TRUNCATE TABLE " + testTableName
)

// Wrapper owns a RecordStore and its connection.
type Wrapper struct {
	store    sqlengine.RecordStore
	truncate func(ctx context.Context) error
	close    func()
}

func (w *Wrapper) Store() sqlengine.RecordStore {
	return w.store
}

func (w *Wrapper) Close() {
	w.close()
}

// CreateWrapperWithTestConfig connects, ensures the schema and registers cleanup and Close with t.
func CreateWrapperWithTestConfig(t testing.TB, options ...sqlengine.Option) *Wrapper {
	t.Helper()

	dsn := os.Getenv(envDSN)
	if dsn == "" {
		t.Skipf("%s is not set", envDSN)
	}

	ctx := context.Background()
	options = append([]sqlengine.Option{sqlengine.WithTableName(testTableName)}, options...)

	var wrapper *Wrapper

	switch adapterType := strings.ToLower(os.Getenv(envAdapterType)); adapterType {
	case typePGXPool, "":
		pool, err := config.OpenPGXPool(ctx, dsn)
		require.NoError(t, err, "error connecting to DB pool in test setup")

		store, err := sqlengine.NewRecordStoreFromPGXPool(pool, options...)
		require.NoError(t, err)

		wrapper = &Wrapper{
			store: store,
			truncate: func(ctx context.Context) error {
				_, err := pool.Exec(ctx, truncateStatement)
				return err
			},
			close: pool.Close,
		}

	case typeSQLDB:
		db, err := config.OpenSQLDB(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")

		store, err := sqlengine.NewRecordStoreFromSQLDB(db, options...)
		require.NoError(t, err)

		wrapper = &Wrapper{
			store: store,
			truncate: func(ctx context.Context) error {
				_, err := db.ExecContext(ctx, truncateStatement)
				return err
			},
			close: func() { _ = db.Close() },
		}

	case typeSQLX:
		db, err := config.OpenSQLX(ctx, dsn)
		require.NoError(t, err, "error connecting to DB in test setup")

		store, err := sqlengine.NewRecordStoreFromSQLX(db, options...)
		require.NoError(t, err)

		wrapper = &Wrapper{
			store: store,
			truncate: func(ctx context.Context) error {
				_, err := db.ExecContext(ctx, truncateStatement)
				return err
			},
			close: func() { _ = db.Close() },
		}

	default:
		panic(fmt.Sprintf("unsupported adapter type from env: %s", adapterType))
	}

	require.NoError(t, wrapper.store.EnsureSchema(ctx))

	t.Cleanup(func() {
		CleanUp(t, wrapper)
		wrapper.Close()
	})

	CleanUp(t, wrapper)

	return wrapper
}

// CleanUp removes all records of all kinds.
func CleanUp(t testing.TB, wrapper *Wrapper) {
	t.Helper()

	require.NoError(t, wrapper.truncate(context.Background()), "error cleaning up the records table")
}
