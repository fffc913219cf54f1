package sqlengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

const (
	metricOperationDuration    = "schedulestore_operation_duration_seconds"
	metricDatabaseErrors       = "schedulestore_database_errors_total"
	metricConcurrencyConflicts = "schedulestore_concurrency_conflicts_total"
	operationFetch             = "fetch"
	operationList              = "list"
	operationCreate            = "create"
	operationUpdate            = "update"
	spanNamePrefix             = "schedulestore."
	spanAttrOperation          = "operation"
	spanAttrKind               = "kind"
	spanAttrErrorType          = "error_type"
	spanAttrDurationMS         = "duration_ms"
	labelStatus                = "status"
	statusSuccess              = "success"
	statusError                = "error"
	errorTypeNotFound          = "not_found"
	errorTypeAlreadyExists     = "already_exists"
	errorTypeConflict          = "concurrency_conflict"
	errorTypeCanceled          = "canceled"
	errorTypeTimeout           = "timeout"
	errorTypeDatabase          = "database"
)

// operationObserver records metrics and the tracing span of one store operation.
type operationObserver struct {
	rs        RecordStore
	ctx       context.Context
	operation string
	kind      schedulestore.Kind
	span      schedulestore.SpanContext
	start     time.Time
}

func (rs RecordStore) startOperation(
	ctx context.Context,
	operation string,
	kind schedulestore.Kind,
) (*operationObserver, context.Context) {

	op := &operationObserver{
		rs:        rs,
		operation: operation,
		kind:      kind,
		start:     time.Now(),
	}

	if rs.tracingCollector != nil {
		ctx, op.span = rs.tracingCollector.StartSpan(
			ctx,
			spanNamePrefix+operation,
			map[string]string{spanAttrOperation: operation, spanAttrKind: string(kind)},
		)
	}

	op.ctx = ctx

	return op, ctx
}

// finish completes the operation. Expected outcomes like a missing record are not counted as database errors.
func (op *operationObserver) finish(err error) {
	duration := time.Since(op.start)
	status := statusSuccess
	errorType := ""

	if err != nil {
		status = statusError
		errorType = classifyError(err)
	}

	labels := map[string]string{
		spanAttrOperation: op.operation,
		spanAttrKind:      string(op.kind),
		labelStatus:       status,
	}

	op.rs.recordDuration(op.ctx, metricOperationDuration, duration, labels)

	switch errorType {
	case errorTypeConflict:
		op.rs.incrementCounter(op.ctx, metricConcurrencyConflicts, map[string]string{
			spanAttrOperation: op.operation,
			spanAttrKind:      string(op.kind),
		})
	case errorTypeDatabase:
		op.rs.incrementCounter(op.ctx, metricDatabaseErrors, map[string]string{
			spanAttrOperation: op.operation,
			spanAttrErrorType: errorType,
		})
	}

	if op.span == nil {
		return
	}

	attrs := map[string]string{spanAttrDurationMS: fmt.Sprintf("%.2f", toMilliseconds(duration))}
	if errorType != "" {
		attrs[spanAttrErrorType] = errorType
	}

	op.span.SetStatus(status)
	op.rs.tracingCollector.FinishSpan(op.span, status, attrs)
}

func classifyError(err error) string {
	switch {
	case errors.Is(err, schedulestore.ErrRecordNotFound):
		return errorTypeNotFound
	case errors.Is(err, schedulestore.ErrRecordAlreadyExists):
		return errorTypeAlreadyExists
	case errors.Is(err, schedulestore.ErrConcurrencyConflict):
		return errorTypeConflict
	case errors.Is(err, context.Canceled):
		return errorTypeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeTimeout
	default:
		return errorTypeDatabase
	}
}

// recordDuration uses the context-aware method if the collector supports it.
func (rs RecordStore) recordDuration(ctx context.Context, metric string, duration time.Duration, labels map[string]string) {
	if rs.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := rs.metricsCollector.(schedulestore.ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	rs.metricsCollector.RecordDuration(metric, duration, labels)
}

func (rs RecordStore) incrementCounter(ctx context.Context, metric string, labels map[string]string) {
	if rs.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := rs.metricsCollector.(schedulestore.ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	rs.metricsCollector.IncrementCounter(metric, labels)
}

// logQueryWithDuration logs SQL statements with execution time at debug level.
func (rs RecordStore) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	args := []any{logAttrDurationMS, toMilliseconds(duration), logAttrQuery, sqlQuery}

	if rs.contextualLogger != nil {
		rs.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
	} else if rs.logger != nil {
		rs.logger.Debug(logMsgSQLExecuted+action, args...)
	}
}

func (rs RecordStore) logInfo(ctx context.Context, msg string, args ...any) {
	if rs.contextualLogger != nil {
		rs.contextualLogger.InfoContext(ctx, msg, args...)
	} else if rs.logger != nil {
		rs.logger.Info(msg, args...)
	}
}

func (rs RecordStore) logWarn(ctx context.Context, msg string, args ...any) {
	if rs.contextualLogger != nil {
		rs.contextualLogger.WarnContext(ctx, msg, args...)
	} else if rs.logger != nil {
		rs.logger.Warn(msg, args...)
	}
}

// logError logs at error level with the error as first attribute.
func (rs RecordStore) logError(ctx context.Context, msg string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if rs.contextualLogger != nil {
		rs.contextualLogger.ErrorContext(ctx, msg, allArgs...)
	} else if rs.logger != nil {
		rs.logger.Error(msg, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
