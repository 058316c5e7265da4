package helper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// LogHandlerSpy is a slog.Handler implementation that captures log records for testing.
type LogHandlerSpy struct {
	records     []slog.Record
	mu          sync.Mutex
	logToStdout bool
}

// NewLogHandlerSpy creates a new LogHandlerSpy.
// Switchable to log to stdout, which can be useful for debugging tests by seeing the actual log output.
func NewLogHandlerSpy(logToStdOut bool) *LogHandlerSpy {
	return &LogHandlerSpy{
		records:     make([]slog.Record, 0),
		logToStdout: logToStdOut,
	}
}

// Handle implements slog.Handler interface.
func (h *LogHandlerSpy) Handle(ctx context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record.Clone())

	if h.logToStdout {
		jsonHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
		_ = jsonHandler.Handle(ctx, record)
	}

	return nil
}

// Enabled implements slog.Handler interface.
func (h *LogHandlerSpy) Enabled(_ context.Context, _ slog.Level) bool {
	return true // Always enabled for testing
}

// WithAttrs implements slog.Handler interface.
func (h *LogHandlerSpy) WithAttrs(_ []slog.Attr) slog.Handler {
	return h
}

// WithGroup implements slog.Handler interface.
func (h *LogHandlerSpy) WithGroup(_ string) slog.Handler {
	return h
}

// GetRecordCount returns the number of captured log records.
func (h *LogHandlerSpy) GetRecordCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.records)
}

// Reset clears all captured log records.
func (h *LogHandlerSpy) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = h.records[:0]
}

// LogRecordMatcher provides a fluent interface for checking log record attributes.
// All conditions must hold for the same record.
type LogRecordMatcher struct {
	candidates []slog.Record
}

// HasLog starts a fluent chain to check for a record with the given level and message.
func (h *LogHandlerSpy) HasLog(level slog.Level, message string) *LogRecordMatcher {
	h.mu.Lock()
	defer h.mu.Unlock()

	candidates := make([]slog.Record, 0)
	for _, record := range h.records {
		if record.Level == level && record.Message == message {
			candidates = append(candidates, record)
		}
	}

	return &LogRecordMatcher{candidates: candidates}
}

// HasDebugLog starts a fluent chain for a debug-level record.
func (h *LogHandlerSpy) HasDebugLog(message string) *LogRecordMatcher {
	return h.HasLog(slog.LevelDebug, message)
}

// HasInfoLog starts a fluent chain for an info-level record.
func (h *LogHandlerSpy) HasInfoLog(message string) *LogRecordMatcher {
	return h.HasLog(slog.LevelInfo, message)
}

// HasWarnLog starts a fluent chain for a warn-level record.
func (h *LogHandlerSpy) HasWarnLog(message string) *LogRecordMatcher {
	return h.HasLog(slog.LevelWarn, message)
}

// HasErrorLog starts a fluent chain for an error-level record.
func (h *LogHandlerSpy) HasErrorLog(message string) *LogRecordMatcher {
	return h.HasLog(slog.LevelError, message)
}

// WithAttr keeps the records that carry key with a value whose string form equals value.
func (m *LogRecordMatcher) WithAttr(key string, value any) *LogRecordMatcher {
	want := fmt.Sprint(value)

	return m.filter(func(attr slog.Attr) bool {
		return attr.Key == key && attr.Value.String() == want
	})
}

// WithAttrKey keeps the records that carry key at all.
func (m *LogRecordMatcher) WithAttrKey(key string) *LogRecordMatcher {
	return m.filter(func(attr slog.Attr) bool {
		return attr.Key == key
	})
}

// WithDurationMS keeps the records that carry a non-negative duration_ms attribute.
func (m *LogRecordMatcher) WithDurationMS() *LogRecordMatcher {
	return m.filter(func(attr slog.Attr) bool {
		if attr.Key != "duration_ms" {
			return false
		}

		switch attr.Value.Kind() {
		case slog.KindInt64:
			return attr.Value.Int64() >= 0
		case slog.KindFloat64:
			return attr.Value.Float64() >= 0
		default:
			return false
		}
	})
}

func (m *LogRecordMatcher) filter(match func(slog.Attr) bool) *LogRecordMatcher {
	kept := make([]slog.Record, 0, len(m.candidates))

	for _, record := range m.candidates {
		matched := false
		record.Attrs(func(attr slog.Attr) bool {
			if match(attr) {
				matched = true
				return false // Stop iteration
			}

			return true
		})

		if matched {
			kept = append(kept, record)
		}
	}

	return &LogRecordMatcher{candidates: kept}
}

// Assert returns true if at least one record satisfied the whole chain.
func (m *LogRecordMatcher) Assert() bool {
	return len(m.candidates) > 0
}
