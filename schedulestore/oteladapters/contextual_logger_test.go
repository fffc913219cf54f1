package oteladapters_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/noop"

	"github.com/AntonStoeckl/schedulestore-go/schedulestore/oteladapters"
)

// recordingLogger keeps the emitted records, everything else is inherited from the noop logger.
type recordingLogger struct {
	noop.Logger
	records []log.Record
}

func (l *recordingLogger) Emit(_ context.Context, record log.Record) {
	l.records = append(l.records, record)
}

func attributesOf(record log.Record) map[string]log.Value {
	attrs := make(map[string]log.Value)
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})

	return attrs
}

func Test_SlogBridgeLogger_AllLevels(t *testing.T) {
	// arrange
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "debug message", "kind", "ScheduleEvent")
	logger.InfoContext(ctx, "info message")
	logger.WarnContext(ctx, "warn message")
	logger.ErrorContext(ctx, "error message")
	logger.Info("plain info message", "name", "team")

	// assert
	output := buf.String()
	assert.Contains(t, output, `"level":"DEBUG","msg":"debug message","kind":"ScheduleEvent"`)
	assert.Contains(t, output, `"msg":"info message"`)
	assert.Contains(t, output, `"level":"WARN"`)
	assert.Contains(t, output, `"level":"ERROR"`)
	assert.Contains(t, output, `"msg":"plain info message","name":"team"`)
}

func Test_NewSlogBridgeLogger_UsesGlobalProvider(t *testing.T) {
	logger := oteladapters.NewSlogBridgeLogger("test")

	// without a configured provider the records go to the global noop provider
	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "info message", "key", "value")
		logger.Error("error message")
	})
}

func Test_OTelLogger_EmitsTypedAttributes(t *testing.T) {
	// arrange
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)

	// act
	logger.WarnContext(
		context.Background(),
		"concurrency conflict detected",
		"name", "team",
		"version", int64(3),
		"duration_ms", 1.5,
		"retries_exhausted", true,
		"error", errors.New("boom"),
		42, "non-string key",
		"dangling",
	)

	// assert
	require.Len(t, recorder.records, 1)
	record := recorder.records[0]
	assert.Equal(t, log.SeverityWarn, record.Severity())
	assert.Equal(t, "concurrency conflict detected", record.Body().AsString())

	attrs := attributesOf(record)
	assert.Len(t, attrs, 6)
	assert.Equal(t, "team", attrs["name"].AsString())
	assert.Equal(t, int64(3), attrs["version"].AsInt64())
	assert.InDelta(t, 1.5, attrs["duration_ms"].AsFloat64(), 0.0001)
	assert.True(t, attrs["retries_exhausted"].AsBool())
	assert.Equal(t, "boom", attrs["error"].AsString())
	assert.Equal(t, "", attrs["dangling"].AsString())
}
