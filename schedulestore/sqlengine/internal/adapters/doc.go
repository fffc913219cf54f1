// Package adapters provide database adapter implementations for the SQL record store.
//
// The adapters support pgxpool.Pool (with an optional read replica), sql.DB and sqlx.DB behind the
// common DBAdapter interface, so the record store works with any supported connection type.
package adapters
