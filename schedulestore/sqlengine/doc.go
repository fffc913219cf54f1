// Package sqlengine provides a SQL implementation of schedulestore.RecordStore for PostgreSQL and SQLite.
//
// All record kinds share one table. Each row holds the full record as a JSON body next to the columns
// used for filtering and sorting, plus a version column that makes updates optimistic:
//
//	UPDATE schedule_records SET version = 4, body = '...' WHERE kind = 'ScheduleCalendar' AND name = 'team' AND version = 3
//
// An update that affects no row was overtaken by a concurrent writer and fails with
// schedulestore.ErrConcurrencyConflict.
//
// Queries are built with goqu. The store accepts pgxpool.Pool (optionally with a read replica that is
// used for reads under schedulestore.EventualConsistency), sql.DB and sqlx.DB connections.
//
// Usage:
//
//	store, err := sqlengine.NewRecordStoreFromPGXPool(pool, sqlengine.WithLogger(slog.Default()))
//	if err != nil { ... }
//	if err := store.EnsureSchema(ctx); err != nil { ... }
//
//	db, _ := sql.Open("sqlite3", "schedule.db")
//	store, err := sqlengine.NewRecordStoreFromSQLDB(db, sqlengine.WithDialect(sqlengine.DialectSQLite))
package sqlengine
