package shell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
)

const (
	defaultMaxRetries = 2
	defaultRetryDelay = 100 * time.Millisecond
)

var (
	// ErrNilMetricsCollector is returned when a nil metrics collector is provided to WithMetrics.
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")

	// ErrEmptyCommandType is returned when an empty command type is provided to WithMetrics.
	ErrEmptyCommandType = errors.New("command type must not be empty")

	// ErrNegativeMaxRetries is returned when max retries are negative.
	ErrNegativeMaxRetries = errors.New("max retries must not be negative")

	// ErrNegativeRetryDelay is returned when the retry delay is negative.
	ErrNegativeRetryDelay = errors.New("retry delay must not be negative")
)

// RetryableFunc represents a function that can be retried.
// Each invocation must re-read the state it writes, so a retry works on the current version.
type RetryableFunc func(ctx context.Context) error

// RetryMetrics reports how a RetryOnConflict call went.
type RetryMetrics struct {
	Attempts         int
	TotalDelay       time.Duration
	LastErrorType    string
	RetriesExhausted bool
}

// retryConfig holds configuration for the fixed delay retry logic.
type retryConfig struct {
	maxRetries       int
	delay            time.Duration
	metricsCollector MetricsCollector
	commandType      string
}

// RetryOnConflict executes fn and re-executes it after a fixed delay as long as it fails with
// schedulestore.ErrConcurrencyConflict, at most maxRetries times.
//
// Retry Schedule (default): 0 ms, 100 ms, 100 ms
// Total Duration: ~ 200 ms worst case plus the execution time of three attempts
//
// All other errors fail fast. When the retries are exhausted, the last conflict error is returned.
// The delay is interrupted by context cancellation.
func RetryOnConflict(
	ctx context.Context,
	fn RetryableFunc,
	options ...RetryOption,
) (RetryMetrics, error) {
	config := &retryConfig{
		maxRetries: defaultMaxRetries,
		delay:      defaultRetryDelay,
	}

	for _, option := range options {
		if err := option(config); err != nil {
			return RetryMetrics{LastErrorType: getErrorType(err)}, err
		}
	}

	metrics := RetryMetrics{}
	var lastErr error

	for attempt := 0; attempt <= config.maxRetries; attempt++ {
		if attempt > 0 {
			recordRetryDelayMetric(ctx, config, attempt, config.delay)

			select {
			case <-time.After(config.delay):
				metrics.TotalDelay += config.delay
			case <-ctx.Done():
				metrics.LastErrorType = getErrorType(ctx.Err())

				return metrics, ctx.Err()
			}
		}

		metrics.Attempts++

		lastErr = fn(ctx)
		metrics.LastErrorType = getErrorType(lastErr)

		if lastErr == nil {
			return metrics, nil
		}

		if !isRetryableError(lastErr) {
			return metrics, lastErr
		}

		recordRetryAttemptMetric(ctx, attempt, config, lastErr)
	}

	metrics.RetriesExhausted = true
	recordMaxRetriesReachedMetric(ctx, config, lastErr)

	return metrics, lastErr
}

// recordRetryDelayMetric records the delay before each retry attempt.
func recordRetryDelayMetric(ctx context.Context, config *retryConfig, attempt int, delay time.Duration) {
	if config.metricsCollector != nil {
		delayLabels := map[string]string{
			LogAttrCommandType: config.commandType,
			"attempt_number":   fmt.Sprintf("%d", attempt),
		}

		if contextualCollector, ok := config.metricsCollector.(ContextualMetricsCollector); ok {
			contextualCollector.RecordDurationContext(ctx, CommandHandlerRetryDelayMetric, delay, delayLabels)
		} else {
			config.metricsCollector.RecordDuration(CommandHandlerRetryDelayMetric, delay, delayLabels)
		}
	}
}

// recordRetryAttemptMetric tracks retry attempts which will actually be retried.
func recordRetryAttemptMetric(ctx context.Context, attempt int, config *retryConfig, lastErr error) {
	if attempt < config.maxRetries && config.metricsCollector != nil {
		retryLabels := BuildRetryLabels(config.commandType, attempt+1, getErrorType(lastErr))

		if contextualCollector, ok := config.metricsCollector.(ContextualMetricsCollector); ok {
			contextualCollector.IncrementCounterContext(ctx, CommandHandlerRetriesMetric, retryLabels)
		} else {
			config.metricsCollector.IncrementCounter(CommandHandlerRetriesMetric, retryLabels)
		}
	}
}

// recordMaxRetriesReachedMetric tracks when retry exhaustion occurs with the final error type.
func recordMaxRetriesReachedMetric(ctx context.Context, config *retryConfig, lastErr error) {
	if config.metricsCollector != nil {
		maxRetriesLabels := map[string]string{
			LogAttrCommandType: config.commandType,
			"final_error_type": getErrorType(lastErr),
		}

		if contextualCollector, ok := config.metricsCollector.(ContextualMetricsCollector); ok {
			contextualCollector.IncrementCounterContext(ctx, CommandHandlerMaxRetriesReachedMetric, maxRetriesLabels)
		} else {
			config.metricsCollector.IncrementCounter(CommandHandlerMaxRetriesReachedMetric, maxRetriesLabels)
		}
	}
}

// isRetryableError determines if an error should be retried.
// Only write conflicts are retried, validation and infrastructure errors fail fast.
func isRetryableError(err error) bool {
	return errors.Is(err, schedulestore.ErrConcurrencyConflict)
}

// getErrorType extracts a string representation of the error type for metrics labeling.
func getErrorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, schedulestore.ErrConcurrencyConflict):
		return "concurrency_conflict"
	case errors.Is(err, context.Canceled):
		return "context_canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "context_deadline_exceeded"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "other"
	}
}

// RetryOption configures retry behavior using the functional options pattern.
type RetryOption func(*retryConfig) error

// WithMaxRetries sets how often a conflicting attempt is repeated. Zero disables retries.
func WithMaxRetries(retries int) RetryOption {
	return func(config *retryConfig) error {
		if retries < 0 {
			return ErrNegativeMaxRetries
		}

		config.maxRetries = retries

		return nil
	}
}

// WithRetryDelay sets the fixed delay between attempts.
func WithRetryDelay(delay time.Duration) RetryOption {
	return func(config *retryConfig) error {
		if delay < 0 {
			return ErrNegativeRetryDelay
		}

		config.delay = delay

		return nil
	}
}

// WithMetrics sets the metrics collector for retry instrumentation.
// Requires commandType to properly label metrics.
func WithMetrics(collector MetricsCollector, commandType string) RetryOption {
	return func(config *retryConfig) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		if commandType == "" {
			return ErrEmptyCommandType
		}

		config.metricsCollector = collector
		config.commandType = commandType

		return nil
	}
}

// SingleAttempt returns the RetryMetrics of an operation that ran exactly once.
func SingleAttempt(err error) RetryMetrics {
	return RetryMetrics{Attempts: 1, LastErrorType: getErrorType(err)}
}
