package observable

import (
	"context"
	"time"

	"github.com/AntonStoeckl/library-rental-go/shared/shell"
)

// QueryObserver holds the collectors used to instrument query handler calls.
// A nil *QueryObserver is valid and observes nothing.
type QueryObserver struct {
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// QueryOption defines a functional option for configuring QueryObserver.
type QueryOption func(*QueryObserver) error

// NewQueryObserver creates a QueryObserver with optional collectors.
func NewQueryObserver(opts ...QueryOption) (*QueryObserver, error) {
	observer := &QueryObserver{}

	for _, opt := range opts {
		if err := opt(observer); err != nil {
			return nil, err
		}
	}

	return observer, nil
}

// WithQueryMetrics sets the metrics collector for the QueryObserver.
func WithQueryMetrics(collector shell.MetricsCollector) QueryOption {
	return func(o *QueryObserver) error {
		o.metricsCollector = collector
		return nil
	}
}

// WithQueryTracing sets the tracing collector for the QueryObserver.
func WithQueryTracing(collector shell.TracingCollector) QueryOption {
	return func(o *QueryObserver) error {
		o.tracingCollector = collector
		return nil
	}
}

// WithQueryContextualLogging sets the contextual logger for the QueryObserver.
func WithQueryContextualLogging(logger shell.ContextualLogger) QueryOption {
	return func(o *QueryObserver) error {
		o.contextualLogger = logger
		return nil
	}
}

// WithQueryLogging sets the basic logger for the QueryObserver.
func WithQueryLogging(logger shell.Logger) QueryOption {
	return func(o *QueryObserver) error {
		o.logger = logger
		return nil
	}
}

// ObserveQuery runs fn and records its duration metric, span and log line under queryType.
// Rejections such as ErrUserNotFound are logged at info level, other failures at error level.
func ObserveQuery[R any](
	ctx context.Context,
	o *QueryObserver,
	queryType string,
	fn func(ctx context.Context) (R, error),
) (R, error) {
	if o == nil {
		return fn(ctx)
	}

	queryStart := time.Now()
	ctx, span := shell.StartSpan(ctx, o.tracingCollector, shell.SpanNameQueryHandle, map[string]string{
		shell.LogAttrQueryType: queryType,
	})

	result, err := fn(ctx)

	duration := time.Since(queryStart)
	status := shell.StatusFor(err)

	shell.RecordQueryMetrics(ctx, o.metricsCollector, queryType, status, duration)
	shell.FinishSpan(o.tracingCollector, span, status, duration, err)

	args := []any{
		shell.LogAttrQueryType, queryType,
		shell.LogAttrBusinessOutcome, status,
		shell.LogAttrDurationMS, shell.ToMilliseconds(duration),
	}

	switch status {
	case shell.StatusSuccess:
		shell.LogInfo(ctx, o.logger, o.contextualLogger, shell.LogMsgQueryCompleted, args...)
	case shell.StatusRejected:
		shell.LogInfo(ctx, o.logger, o.contextualLogger, shell.LogMsgQueryCompleted, append(args, shell.LogAttrError, err.Error())...)
	default:
		shell.LogError(ctx, o.logger, o.contextualLogger, shell.LogMsgQueryFailed, append(args, shell.LogAttrError, err.Error())...)
	}

	return result, err
}

type lookupResult[R any] struct {
	value R
	found bool
}

// ObserveLookup is ObserveQuery for lookups that report whether a value was found.
// A miss is a success, it is the caller who decides whether absence is an error.
func ObserveLookup[R any](
	ctx context.Context,
	o *QueryObserver,
	queryType string,
	fn func(ctx context.Context) (R, bool, error),
) (R, bool, error) {
	result, err := ObserveQuery(ctx, o, queryType, func(ctx context.Context) (lookupResult[R], error) {
		value, found, err := fn(ctx)
		return lookupResult[R]{value: value, found: found}, err
	})

	return result.value, result.found, err
}
