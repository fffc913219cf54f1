package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrEnsuringSchemaFailed = errors.New("ensuring the schema failed")

// Text columns use the "C" collation in postgres so that ORDER BY compares bytes like the memory engine.
const postgresTableDDL = `CREATE TABLE IF NOT EXISTS %[1]s (
	kind              TEXT COLLATE "C" NOT NULL,
	name              TEXT COLLATE "C" NOT NULL,
	version           BIGINT NOT NULL,
	created_at_ns     BIGINT NOT NULL,
	display_name      TEXT COLLATE "C" NOT NULL DEFAULT '',
	calendar_name     TEXT COLLATE "C" NOT NULL DEFAULT '',
	start_at          TEXT COLLATE "C" NOT NULL DEFAULT '',
	status            TEXT COLLATE "C" NOT NULL DEFAULT '',
	related_post_name TEXT COLLATE "C" NOT NULL DEFAULT '',
	action_type       TEXT COLLATE "C" NOT NULL DEFAULT '',
	operator          TEXT COLLATE "C" NOT NULL DEFAULT '',
	action_at         TEXT COLLATE "C" NOT NULL DEFAULT '',
	deleting          SMALLINT NOT NULL DEFAULT 0,
	body              JSONB NOT NULL,
	PRIMARY KEY (kind, name)
)`

const sqliteTableDDL = `CREATE TABLE IF NOT EXISTS %[1]s (
	kind              TEXT NOT NULL,
	name              TEXT NOT NULL,
	version           INTEGER NOT NULL,
	created_at_ns     INTEGER NOT NULL,
	display_name      TEXT NOT NULL DEFAULT '',
	calendar_name     TEXT NOT NULL DEFAULT '',
	start_at          TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL DEFAULT '',
	related_post_name TEXT NOT NULL DEFAULT '',
	action_type       TEXT NOT NULL DEFAULT '',
	operator          TEXT NOT NULL DEFAULT '',
	action_at         TEXT NOT NULL DEFAULT '',
	deleting          INTEGER NOT NULL DEFAULT 0,
	body              TEXT NOT NULL,
	PRIMARY KEY (kind, name)
)`

var indexDDL = []string{
	`CREATE INDEX IF NOT EXISTS %[1]s_created_idx ON %[1]s (kind, created_at_ns)`,
	`CREATE INDEX IF NOT EXISTS %[1]s_event_calendar_idx ON %[1]s (kind, calendar_name, start_at)`,
	`CREATE INDEX IF NOT EXISTS %[1]s_event_post_idx ON %[1]s (kind, related_post_name)`,
	`CREATE INDEX IF NOT EXISTS %[1]s_log_action_idx ON %[1]s (kind, action_at)`,
}

// SchemaStatements returns the DDL statements EnsureSchema executes, e.g. for external migration tooling.
func (rs RecordStore) SchemaStatements() []string {
	tableDDL := postgresTableDDL
	if rs.dialect == DialectSQLite {
		tableDDL = sqliteTableDDL
	}

	statements := []string{fmt.Sprintf(tableDDL, rs.tableName)}
	for _, ddl := range indexDDL {
		statements = append(statements, fmt.Sprintf(ddl, rs.tableName))
	}

	return statements
}

// EnsureSchema creates the table and its indexes if they do not exist yet.
func (rs RecordStore) EnsureSchema(ctx context.Context) error {
	for _, statement := range rs.SchemaStatements() {
		start := time.Now()
		_, err := rs.db.Exec(ctx, statement)
		rs.logQueryWithDuration(ctx, statement, logActionSchema, time.Since(start))

		if err != nil {
			rs.logError(ctx, logMsgDBExecFailed, err, logAttrQuery, statement)
			return errors.Join(ErrEnsuringSchemaFailed, err)
		}
	}

	rs.logInfo(ctx, logMsgOperation+logMsgSchemaEnsured, logAttrTable, rs.tableName)

	return nil
}
