package postgresengine

import (
	"time"

	"github.com/AntonStoeckl/library-rental-go/rental"
)

// Interface aliases so callers can configure the store without importing the rental package.
type (
	Logger                     = rental.Logger
	ContextualLogger           = rental.ContextualLogger
	MetricsCollector           = rental.MetricsCollector
	ContextualMetricsCollector = rental.ContextualMetricsCollector
	TracingCollector           = rental.TracingCollector
	SpanContext                = rental.SpanContext
)

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithLockTimeout sets how long FindAndLockBook waits for a book that another
// transaction holds. Postgres only accepts whole milliseconds.
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *Store) error {
		if timeout < time.Millisecond {
			return rental.ErrInvalidLockTimeout
		}

		s.lockTimeout = timeout

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL statements with execution timing (development use)
// Info level: Operation outcomes and durations (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// When set, it is preferred over the basic Logger so log lines carry trace correlation.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// It receives operation durations, lock timeouts and database errors.
func WithMetrics(collector MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
// Every store operation and every transaction gets its own span.
func WithTracing(collector TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}
