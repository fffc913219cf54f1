package sqlengine

import (
	"errors"
	"regexp"
	"time"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

var ErrEmptyTableName = errors.New("table name must not be empty")
var ErrInvalidTableName = errors.New("table name must be a plain SQL identifier")
var ErrUnsupportedDialect = errors.New("unsupported SQL dialect")
var ErrNilClock = errors.New("clock must not be nil")

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Dialect selects the SQL flavor of the generated queries and the schema.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite3"
)

// Option defines a functional option for configuring RecordStore.
type Option func(*RecordStore) error

// WithTableName sets the table name, it must be a plain identifier since it is part of the schema DDL.
func WithTableName(tableName string) Option {
	return func(rs *RecordStore) error {
		if tableName == "" {
			return ErrEmptyTableName
		}

		if !tableNamePattern.MatchString(tableName) {
			return ErrInvalidTableName
		}

		rs.tableName = tableName

		return nil
	}
}

// WithDialect sets the SQL dialect. The default is DialectPostgres.
func WithDialect(dialect Dialect) Option {
	return func(rs *RecordStore) error {
		switch dialect {
		case DialectPostgres, DialectSQLite:
			rs.dialect = dialect
			return nil
		default:
			return ErrUnsupportedDialect
		}
	}
}

// WithLogger sets the logger for the RecordStore.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: record writes and concurrency conflicts (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger schedulestore.Logger) Option {
	return func(rs *RecordStore) error {
		rs.logger = logger
		return nil
	}
}

// WithContextualLogger sets a context-aware logger, it takes precedence over WithLogger.
func WithContextualLogger(logger schedulestore.ContextualLogger) Option {
	return func(rs *RecordStore) error {
		rs.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector which receives operation durations, database errors
// and concurrency conflicts.
func WithMetrics(collector schedulestore.MetricsCollector) Option {
	return func(rs *RecordStore) error {
		rs.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector, every store operation becomes a span.
func WithTracing(collector schedulestore.TracingCollector) Option {
	return func(rs *RecordStore) error {
		rs.tracingCollector = collector
		return nil
	}
}

// WithClock replaces time.Now for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(rs *RecordStore) error {
		if now == nil {
			return ErrNilClock
		}

		rs.now = now

		return nil
	}
}
