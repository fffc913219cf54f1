package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/schedulestore/memengine"
	"github.com/AntonStoeckl/schedulestore-go/schedulestore/sqlengine"
)

var ErrCreatingStoreFailed = errors.New("creating the record store failed")

// Instrumentation is handed to the engine. Nil members are skipped.
type Instrumentation struct {
	Logger           schedulestore.Logger
	ContextualLogger schedulestore.ContextualLogger
	Metrics          schedulestore.MetricsCollector
	Tracing          schedulestore.TracingCollector
}

type schemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

// Store is the RecordStore selected by the configuration together with the connections it owns.
type Store struct {
	schedulestore.RecordStore

	driver  string
	schema  schemaEnsurer
	closers []func()
}

// Driver returns the configured driver name.
func (s *Store) Driver() string {
	return s.driver
}

// EnsureSchema creates the database schema. It is a no-op for the memory driver.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if s.schema == nil {
		return nil
	}

	return s.schema.EnsureSchema(ctx)
}

// Close releases the database connections in reverse order of their creation.
func (s *Store) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}

	s.closers = nil
}

// OpenStore connects to the configured database and creates the matching engine.
func OpenStore(ctx context.Context, cfg StoreConfig, instrumentation Instrumentation) (*Store, error) {
	store := &Store{driver: cfg.Driver}

	switch cfg.Driver {
	case DriverMemory:
		rs, err := memengine.NewRecordStore(memoryOptions(cfg, instrumentation)...)
		if err != nil {
			return nil, errors.Join(ErrCreatingStoreFailed, err)
		}

		store.RecordStore = rs

		return store, nil

	case DriverPostgres, DriverPostgresSQL, DriverPostgresSQLX, DriverSQLite:
		rs, err := openSQLStore(ctx, store, cfg, sqlOptions(cfg, instrumentation))
		if err != nil {
			store.Close()
			return nil, errors.Join(ErrCreatingStoreFailed, err)
		}

		store.RecordStore = rs
		store.schema = rs

		return store, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

func openSQLStore(
	ctx context.Context,
	store *Store,
	cfg StoreConfig,
	options []sqlengine.Option,
) (sqlengine.RecordStore, error) {

	switch cfg.Driver {
	case DriverPostgres:
		primary, err := OpenPGXPool(ctx, cfg.DSN)
		if err != nil {
			return sqlengine.RecordStore{}, err
		}
		store.closers = append(store.closers, primary.Close)

		if cfg.ReplicaDSN == "" {
			return sqlengine.NewRecordStoreFromPGXPool(primary, options...)
		}

		replica, err := OpenPGXPool(ctx, cfg.ReplicaDSN)
		if err != nil {
			return sqlengine.RecordStore{}, err
		}
		store.closers = append(store.closers, replica.Close)

		return sqlengine.NewRecordStoreFromPGXPoolAndReplica(primary, replica, options...)

	case DriverPostgresSQL:
		db, err := OpenSQLDB(ctx, cfg.DSN)
		if err != nil {
			return sqlengine.RecordStore{}, err
		}
		store.closers = append(store.closers, func() { _ = db.Close() })

		return sqlengine.NewRecordStoreFromSQLDB(db, options...)

	case DriverPostgresSQLX:
		db, err := OpenSQLX(ctx, cfg.DSN)
		if err != nil {
			return sqlengine.RecordStore{}, err
		}
		store.closers = append(store.closers, func() { _ = db.Close() })

		return sqlengine.NewRecordStoreFromSQLX(db, options...)

	default:
		db, err := OpenSQLite(ctx, cfg.DSN)
		if err != nil {
			return sqlengine.RecordStore{}, err
		}
		store.closers = append(store.closers, func() { _ = db.Close() })

		return sqlengine.NewRecordStoreFromSQLDB(db, append(options, sqlengine.WithDialect(sqlengine.DialectSQLite))...)
	}
}

func memoryOptions(cfg StoreConfig, instrumentation Instrumentation) []memengine.Option {
	var options []memengine.Option

	if cfg.SnapshotFile != "" {
		options = append(options, memengine.WithSnapshotFile(cfg.SnapshotFile))
	}

	if instrumentation.Logger != nil {
		options = append(options, memengine.WithLogger(instrumentation.Logger))
	}

	if instrumentation.ContextualLogger != nil {
		options = append(options, memengine.WithContextualLogger(instrumentation.ContextualLogger))
	}

	return options
}

func sqlOptions(cfg StoreConfig, instrumentation Instrumentation) []sqlengine.Option {
	options := []sqlengine.Option{sqlengine.WithTableName(cfg.TableName)}

	if instrumentation.Logger != nil {
		options = append(options, sqlengine.WithLogger(instrumentation.Logger))
	}

	if instrumentation.ContextualLogger != nil {
		options = append(options, sqlengine.WithContextualLogger(instrumentation.ContextualLogger))
	}

	if instrumentation.Metrics != nil {
		options = append(options, sqlengine.WithMetrics(instrumentation.Metrics))
	}

	if instrumentation.Tracing != nil {
		options = append(options, sqlengine.WithTracing(instrumentation.Tracing))
	}

	return options
}
