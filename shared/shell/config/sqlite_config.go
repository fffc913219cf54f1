package config

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
)

// OpenSQLite opens a *sql.DB on the sqlite3 driver.
// SQLite serializes writers, a single connection also keeps a ":memory:" database alive between queries.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Join(ErrConnectingFailed, err)
	}

	db.SetMaxOpenConns(1)

	if pingErr := db.PingContext(ctx); pingErr != nil {
		_ = db.Close()
		return nil, errors.Join(ErrConnectingFailed, pingErr)
	}

	return db, nil
}
