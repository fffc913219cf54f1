package shell

import "time"

// HandlerResult represents the outcome of a command handler execution.
// It captures both business outcomes (idempotency) and execution metadata (retry information)
// without coupling the handler to specific observability implementations.
type HandlerResult struct {
	// Idempotent indicates that no state change was needed.
	// This is a first-class business outcome, not an error condition.
	Idempotent bool

	// RecordName is the name of the record that was written, or would have been written.
	RecordName string

	// RetryAttempts is the total number of attempts made (1 for no retries, 2+ for retries).
	RetryAttempts int

	// TotalRetryDelay is the cumulative time spent waiting between attempts.
	TotalRetryDelay time.Duration

	// LastErrorType describes the type of the final error encountered.
	// Values: "none", "concurrency_conflict", "context_canceled", "context_deadline_exceeded", "invalid_input", "other"
	LastErrorType string

	// RetriesExhausted indicates that all attempts failed with a write conflict.
	RetriesExhausted bool
}

// NewSuccessResult creates a HandlerResult for successful operations (non-idempotent).
func NewSuccessResult(recordName string, retryMetrics RetryMetrics) HandlerResult {
	return newHandlerResult(false, recordName, retryMetrics)
}

// NewIdempotentResult creates a HandlerResult for idempotent operations.
func NewIdempotentResult(recordName string, retryMetrics RetryMetrics) HandlerResult {
	return newHandlerResult(true, recordName, retryMetrics)
}

// NewErrorResult creates a HandlerResult for failed operations.
// This is used when the handler returns an error but still wants to report retry metadata.
func NewErrorResult(recordName string, retryMetrics RetryMetrics) HandlerResult {
	return newHandlerResult(false, recordName, retryMetrics)
}

func newHandlerResult(idempotent bool, recordName string, retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		Idempotent:       idempotent,
		RecordName:       recordName,
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
