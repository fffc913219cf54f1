package observable_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell"
	"github.com/AntonStoeckl/schedulestore-go/shared/shell/observable"
	"github.com/AntonStoeckl/schedulestore-go/testutil/helper"
)

type testCommand struct{}

func (testCommand) CommandType() string { return "TestCommand" }

type testQuery struct{}

func (testQuery) QueryType() string { return "TestQuery" }

type stubCommandHandler struct {
	mu     sync.Mutex
	calls  int
	result shell.HandlerResult
	err    error
}

func (h *stubCommandHandler) Handle(_ context.Context, _ testCommand) (shell.HandlerResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++

	return h.result, h.err
}

type stubQueryHandler struct {
	result []string
	err    error
}

func (h stubQueryHandler) Handle(_ context.Context, _ testQuery) ([]string, error) {
	return h.result, h.err
}

func givenCommandWrapper(
	t *testing.T,
	handler *stubCommandHandler,
) (*observable.CommandWrapper[testCommand], *helper.MetricsCollectorSpy, *helper.TracingCollectorSpy, *helper.ContextualLoggerSpy) {

	t.Helper()

	metrics := helper.NewMetricsCollectorSpy()
	tracing := helper.NewTracingCollectorSpy()
	logger := helper.NewContextualLoggerSpy()

	wrapper, err := observable.NewCommandWrapper[testCommand](
		handler,
		observable.WithCommandMetrics[testCommand](metrics),
		observable.WithCommandTracing[testCommand](tracing),
		observable.WithCommandContextualLogging[testCommand](logger),
	)
	require.NoError(t, err)

	return wrapper, metrics, tracing, logger
}

func Test_CommandWrapper_Handle_Success(t *testing.T) {
	// arrange
	expected := shell.HandlerResult{RecordName: "team", RetryAttempts: 1, LastErrorType: "none"}
	handler := &stubCommandHandler{result: expected}
	wrapper, metrics, tracing, logger := givenCommandWrapper(t, handler)

	// act
	result, err := wrapper.Handle(context.Background(), testCommand{})

	// assert
	require.NoError(t, err)
	assert.Equal(t, expected, result)
	assert.Equal(t, 1, handler.calls)
	assert.True(t, metrics.HasCounterRecordForMetric(shell.CommandHandlerCallsMetric).
		WithLabel(shell.LogAttrCommandType, "TestCommand").
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.True(t, metrics.HasDurationRecordForMetric(shell.CommandHandlerDurationMetric).
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.Zero(t, metrics.CountCounterRecordsForMetric(shell.CommandHandlerRetriesMetric))
	assert.True(t, tracing.HasFinishedSpan(shell.SpanNameCommandHandle, shell.StatusSuccess))
	assert.True(t, logger.HasRecord("info", shell.LogMsgCommandStarted))
	assert.True(t, logger.HasRecord("info", shell.LogMsgCommandCompleted))
}

func Test_CommandWrapper_Handle_Idempotent(t *testing.T) {
	// arrange
	handler := &stubCommandHandler{result: shell.HandlerResult{Idempotent: true, RetryAttempts: 1}}
	wrapper, metrics, tracing, _ := givenCommandWrapper(t, handler)

	// act
	_, err := wrapper.Handle(context.Background(), testCommand{})

	// assert
	require.NoError(t, err)
	assert.True(t, metrics.HasCounterRecordForMetric(shell.CommandHandlerIdempotentMetric).
		WithLabel(shell.LogAttrCommandType, "TestCommand").
		Assert())
	assert.True(t, tracing.HasFinishedSpan(shell.SpanNameCommandHandle, shell.StatusIdempotent))
}

func Test_CommandWrapper_Handle_RecordsRetryMetadata(t *testing.T) {
	// arrange
	handler := &stubCommandHandler{result: shell.HandlerResult{
		RetryAttempts:   3,
		TotalRetryDelay: 200 * time.Millisecond,
		LastErrorType:   "none",
	}}
	wrapper, metrics, _, _ := givenCommandWrapper(t, handler)

	// act
	_, err := wrapper.Handle(context.Background(), testCommand{})

	// assert
	require.NoError(t, err)
	assert.True(t, metrics.HasCounterRecordForMetric(shell.CommandHandlerRetriesMetric).
		WithLabel("attempt_number", "2").
		Assert())
	assert.True(t, metrics.HasDurationRecordForMetric(shell.CommandHandlerRetryDelayMetric).
		WithLabel(shell.LogAttrCommandType, "TestCommand").
		Assert())
	assert.Zero(t, metrics.CountCounterRecordsForMetric(shell.CommandHandlerMaxRetriesReachedMetric))
}

func Test_CommandWrapper_Handle_ClassifiesErrors(t *testing.T) {
	testCases := []struct {
		name           string
		result         shell.HandlerResult
		err            error
		expectedStatus string
		expectedMetric string
	}{
		{
			name:           "conflict after exhausted retries",
			result:         shell.HandlerResult{RetryAttempts: 3, RetriesExhausted: true},
			err:            schedulestore.ErrConcurrencyConflict,
			expectedStatus: shell.StatusConcurrencyConflict,
			expectedMetric: shell.CommandHandlerConcurrencyConflictMetric,
		},
		{
			name:           "canceled",
			err:            context.Canceled,
			expectedStatus: shell.StatusCanceled,
			expectedMetric: shell.CommandHandlerCanceledMetric,
		},
		{
			name:           "timeout",
			err:            context.DeadlineExceeded,
			expectedStatus: shell.StatusTimeout,
			expectedMetric: shell.CommandHandlerTimeoutMetric,
		},
		{
			name:           "invalid input",
			err:            shell.NewInputError("actionType must not be blank"),
			expectedStatus: shell.StatusInvalidInput,
			expectedMetric: shell.CommandHandlerCallsMetric,
		},
		{
			name:           "other",
			err:            errors.New("disk full"),
			expectedStatus: shell.StatusError,
			expectedMetric: shell.CommandHandlerCallsMetric,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			handler := &stubCommandHandler{result: tc.result, err: tc.err}
			wrapper, metrics, tracing, logger := givenCommandWrapper(t, handler)

			// act
			result, err := wrapper.Handle(context.Background(), testCommand{})

			// assert
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, tc.result, result)
			assert.True(t, metrics.HasCounterRecordForMetric(tc.expectedMetric).WithStatus(tc.expectedStatus).Assert())
			assert.True(t, tracing.HasFinishedSpan(shell.SpanNameCommandHandle, tc.expectedStatus))
			assert.True(t, logger.HasRecord("error", shell.LogMsgCommandFailed))

			if tc.result.RetriesExhausted {
				assert.Equal(t, 1, metrics.CountCounterRecordsForMetric(shell.CommandHandlerMaxRetriesReachedMetric))
			}
		})
	}
}

func Test_CommandWrapper_WithoutOptions_OnlyDelegates(t *testing.T) {
	// arrange
	handler := &stubCommandHandler{result: shell.HandlerResult{RecordName: "x"}}
	wrapper, err := observable.NewCommandWrapper[testCommand](handler)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), testCommand{})

	// assert
	require.NoError(t, err)
	assert.Equal(t, "x", result.RecordName)
}

func Test_CommandWrapper_BasicLogger(t *testing.T) {
	// arrange
	logSpy := helper.NewLogHandlerSpy()
	handler := &stubCommandHandler{err: errors.New("boom")}
	wrapper, err := observable.NewCommandWrapper[testCommand](
		handler,
		observable.WithCommandLogging[testCommand](logSpy.Logger()),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), testCommand{})

	// assert
	assert.Error(t, err)
	assert.True(t, logSpy.HasLogWithAttr(shell.LogMsgCommandFailed, shell.LogAttrError, "boom"))
}

func Test_CommandWrapper_BasicLogger_LogsRecordNameAndOutcome(t *testing.T) {
	// arrange
	logSpy := helper.NewLogHandlerSpy()
	handler := &stubCommandHandler{result: shell.HandlerResult{RecordName: "schedule-log-1", RetryAttempts: 1}}
	wrapper, err := observable.NewCommandWrapper[testCommand](
		handler,
		observable.WithCommandLogging[testCommand](logSpy.Logger()),
	)
	require.NoError(t, err)

	// act
	_, err = wrapper.Handle(context.Background(), testCommand{})

	// assert
	require.NoError(t, err)
	assert.True(t, logSpy.HasLogWithAttr(shell.LogMsgCommandCompleted, shell.LogAttrRecordName, "schedule-log-1"))
	assert.True(t, logSpy.HasLogWithAttr(shell.LogMsgCommandCompleted, shell.LogAttrBusinessOutcome, shell.StatusSuccess))
}

func Test_QueryWrapper_Handle_Success(t *testing.T) {
	// arrange
	metrics := helper.NewMetricsCollectorSpy()
	tracing := helper.NewTracingCollectorSpy()
	logger := helper.NewContextualLoggerSpy()

	wrapper, err := observable.NewQueryWrapper[testQuery, []string](
		stubQueryHandler{result: []string{"a", "b"}},
		observable.WithQueryMetrics[testQuery, []string](metrics),
		observable.WithQueryTracing[testQuery, []string](tracing),
		observable.WithQueryContextualLogging[testQuery, []string](logger),
	)
	require.NoError(t, err)

	// act
	result, err := wrapper.Handle(context.Background(), testQuery{})

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, result)
	assert.True(t, metrics.HasDurationRecordForMetric(shell.QueryHandlerDurationMetric).
		WithLabel(shell.LogAttrQueryType, "TestQuery").
		WithStatus(shell.StatusSuccess).
		Assert())
	assert.True(t, tracing.HasFinishedSpan(shell.SpanNameQueryHandle, shell.StatusSuccess))
	assert.True(t, logger.HasRecord("info", shell.LogMsgQueryCompleted))
}

func Test_QueryWrapper_Handle_Errors(t *testing.T) {
	testCases := []struct {
		name           string
		err            error
		expectedStatus string
	}{
		{name: "invalid input", err: shell.NewInputError("calendar/from/to must not be blank"), expectedStatus: shell.StatusInvalidInput},
		{name: "canceled", err: context.Canceled, expectedStatus: shell.StatusCanceled},
		{name: "timeout", err: context.DeadlineExceeded, expectedStatus: shell.StatusTimeout},
		{name: "other", err: errors.New("database down"), expectedStatus: shell.StatusError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// arrange
			metrics := helper.NewMetricsCollectorSpy()
			logger := helper.NewContextualLoggerSpy()

			wrapper, err := observable.NewQueryWrapper[testQuery, []string](
				stubQueryHandler{err: tc.err},
				observable.WithQueryMetrics[testQuery, []string](metrics),
				observable.WithQueryContextualLogging[testQuery, []string](logger),
			)
			require.NoError(t, err)

			// act
			_, err = wrapper.Handle(context.Background(), testQuery{})

			// assert
			assert.ErrorIs(t, err, tc.err)
			assert.True(t, metrics.HasCounterRecordForMetric(shell.QueryHandlerCallsMetric).WithStatus(tc.expectedStatus).Assert())
			assert.True(t, logger.HasRecord("error", shell.LogMsgQueryFailed))
		})
	}
}
