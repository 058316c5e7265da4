package oteladapters_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/embedded"

	"github.com/AntonStoeckl/library-rental-go/rental/oteladapters"
)

type recordingLogger struct {
	embedded.Logger
	mu      sync.Mutex
	records []log.Record
}

func (l *recordingLogger) Emit(_ context.Context, record log.Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record.Clone())
}

func (l *recordingLogger) Enabled(context.Context, log.EnabledParameters) bool {
	return true
}

func attributesOf(record log.Record) map[string]log.Value {
	attrs := make(map[string]log.Value)
	record.WalkAttributes(func(kv log.KeyValue) bool {
		attrs[kv.Key] = kv.Value
		return true
	})

	return attrs
}

func Test_OTelLogger_EmitsRecordsWithSeverityAndTypedAttributes(t *testing.T) {
	// setup
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)

	// act
	logger.WarnContext(context.Background(), "rentalstore: lock wait timed out",
		"duration_ms", 12.5,
		"row_count", 3,
		"error", errors.New("lock not available"),
		"dangling",
	)

	// assert
	require.Len(t, recorder.records, 1)
	record := recorder.records[0]
	assert.Equal(t, log.SeverityWarn, record.Severity())
	assert.Equal(t, "rentalstore: lock wait timed out", record.Body().AsString())
	assert.False(t, record.Timestamp().IsZero())

	attrs := attributesOf(record)
	assert.Len(t, attrs, 3, "a trailing key without value is dropped")
	assert.Equal(t, log.KindFloat64, attrs["duration_ms"].Kind())
	assert.Equal(t, int64(3), attrs["row_count"].AsInt64())
	assert.Equal(t, "lock not available", attrs["error"].AsString())
}

func Test_OTelLogger_SeverityPerMethod(t *testing.T) {
	// setup
	recorder := &recordingLogger{}
	logger := oteladapters.NewOTelLogger(recorder)
	ctx := context.Background()

	// act
	logger.DebugContext(ctx, "debug")
	logger.InfoContext(ctx, "info")
	logger.WarnContext(ctx, "warn")
	logger.ErrorContext(ctx, "error")

	// assert
	require.Len(t, recorder.records, 4)
	assert.Equal(t, log.SeverityDebug, recorder.records[0].Severity())
	assert.Equal(t, log.SeverityInfo, recorder.records[1].Severity())
	assert.Equal(t, log.SeverityWarn, recorder.records[2].Severity())
	assert.Equal(t, log.SeverityError, recorder.records[3].Severity())
}

func Test_SlogBridgeLoggerWithHandler_WritesThroughHandler(t *testing.T) {
	// setup
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)

	// act
	logger.InfoContext(context.Background(), "command handler completed", "command_type", "RentBook")
	logger.Debug("plain debug line")

	// assert
	assert.Contains(t, buf.String(), `"msg":"command handler completed"`)
	assert.Contains(t, buf.String(), `"command_type":"RentBook"`)
	assert.Contains(t, buf.String(), `"msg":"plain debug line"`)
}

func Test_SlogBridgeLogger_UsesGlobalProviderWithoutPanicking(t *testing.T) {
	// setup
	logger := oteladapters.NewSlogBridgeLogger("test")
	ctx := context.Background()

	// act
	assert.NotPanics(t, func() {
		logger.DebugContext(ctx, "debug message", "key", "value")
		logger.InfoContext(ctx, "info message", "key", "value")
		logger.WarnContext(ctx, "warn message", "key", "value")
		logger.ErrorContext(ctx, "error message", "key", "value")
	})
}
