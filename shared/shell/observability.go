package shell

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-rental-go/rental"
)

// Command handler metrics. All carry the command_type label; per-status counters also carry status.
const (
	CommandHandlerDurationMetric    = "commandhandler_handle_duration_seconds"
	CommandHandlerCallsMetric       = "commandhandler_handle_calls_total"
	CommandHandlerRejectedMetric    = "commandhandler_rejected_operations_total"
	CommandHandlerCanceledMetric    = "commandhandler_canceled_operations_total"
	CommandHandlerTimeoutMetric     = "commandhandler_timeout_operations_total"
	CommandHandlerLockTimeoutMetric = "commandhandler_lock_timeouts_total"

	// CommandHandlerRetriesMetric counts handler calls that needed retries, labeled with the
	// number of retries and the error type of the last attempt.
	// A steadily rising rate for RentBook points to hot books.
	CommandHandlerRetriesMetric = "commandhandler_retries_total"

	// CommandHandlerRetryDelayMetric is the total backoff one handler call spent waiting.
	CommandHandlerRetryDelayMetric = "commandhandler_retry_delay_seconds"

	// CommandHandlerMaxRetriesReachedMetric counts handler calls that gave up after the last attempt.
	CommandHandlerMaxRetriesReachedMetric = "commandhandler_max_retries_reached_total"

	// CommandHandlerRetryAttemptsMetric counts single attempts that failed with a retryable error,
	// labeled with attempt_number and error_type. Recorded inside the retry loop.
	CommandHandlerRetryAttemptsMetric = "commandhandler_retry_attempts_total"

	// CommandHandlerRetryBackoffMetric is each single wait between two attempts.
	CommandHandlerRetryBackoffMetric = "commandhandler_retry_backoff_seconds"
)

// Query handler metrics, labeled with query_type and status.
const (
	QueryHandlerDurationMetric = "queryhandler_handle_duration_seconds"
	QueryHandlerCallsMetric    = "queryhandler_handle_calls_total"
	QueryHandlerCanceledMetric = "queryhandler_canceled_operations_total"
	QueryHandlerTimeoutMetric  = "queryhandler_timeout_operations_total"
)

// Status values, used as metric label, span status and log attribute.
const (
	StatusSuccess     = "success"
	StatusError       = "error"
	StatusRejected    = "rejected" // a business rule refused: not found, already borrowed, ...
	StatusCanceled    = "canceled"
	StatusTimeout     = "timeout"      // context deadline exceeded
	StatusLockTimeout = "lock_timeout" // gave up waiting for a book lock
)

// Log messages.
const (
	LogMsgCommandStarted   = "command handler started"
	LogMsgCommandCompleted = "command handler completed"
	LogMsgCommandRejected  = "command handler rejected command"
	LogMsgCommandFailed    = "command handler failed"
	LogMsgQueryCompleted   = "query handler completed"
	LogMsgQueryFailed      = "query handler failed"
)

// Log attributes and metric labels.
const (
	LogAttrCommandType     = "command_type"
	LogAttrQueryType       = "query_type"
	LogAttrOperationID     = "operation_id"
	LogAttrStatus          = "status"
	LogAttrDurationMS      = "duration_ms"
	LogAttrBusinessOutcome = "business_outcome"
	LogAttrError           = "error"

	LabelAttemptNumber = "attempt_number"
	LabelRetries       = "retries"
	LabelErrorType     = "error_type"
)

// Span names.
const (
	SpanNameCommandHandle = "commandhandler.handle"
	SpanNameQueryHandle   = "queryhandler.handle"
)

// The observability contracts are the ones the rental stores use, so one collector serves both.
type (
	MetricsCollector           = rental.MetricsCollector
	ContextualMetricsCollector = rental.ContextualMetricsCollector
	TracingCollector           = rental.TracingCollector
	SpanContext                = rental.SpanContext
	ContextualLogger           = rental.ContextualLogger
	Logger                     = rental.Logger
)

// commandStatusCounters and queryStatusCounters name the extra counter per non-success status.
var (
	commandStatusCounters = map[string]string{
		StatusRejected:    CommandHandlerRejectedMetric,
		StatusCanceled:    CommandHandlerCanceledMetric,
		StatusTimeout:     CommandHandlerTimeoutMetric,
		StatusLockTimeout: CommandHandlerLockTimeoutMetric,
	}

	queryStatusCounters = map[string]string{
		StatusCanceled: QueryHandlerCanceledMetric,
		StatusTimeout:  QueryHandlerTimeoutMetric,
	}
)

// BuildCommandLabels creates the standard command handler labels.
func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

// BuildQueryLabels creates the standard query handler labels.
func BuildQueryLabels(queryType, status string) map[string]string {
	return map[string]string{
		LogAttrQueryType: queryType,
		LogAttrStatus:    status,
	}
}

// BuildRetryLabels creates the labels of CommandHandlerRetriesMetric.
func BuildRetryLabels(commandType string, retries int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LabelRetries:       strconv.Itoa(retries),
		LabelErrorType:     errorType,
	}
}

// ToMilliseconds converts a time.Duration to float64 milliseconds.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// StatusFor classifies a handler error into one of the status values.
func StatusFor(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case IsCancellationError(err):
		return StatusCanceled
	case IsTimeoutError(err):
		return StatusTimeout
	case IsLockTimeoutError(err):
		return StatusLockTimeout
	case IsRejectionError(err):
		return StatusRejected
	default:
		return StatusError
	}
}

// RecordCommandMetrics records duration and call count of one command handler call,
// plus the status counter for anything but success and error.
func RecordCommandMetrics(
	ctx context.Context,
	collector MetricsCollector,
	commandType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildCommandLabels(commandType, status)
	recordDuration(ctx, collector, CommandHandlerDurationMetric, duration, labels)
	incrementCounter(ctx, collector, CommandHandlerCallsMetric, labels)

	if metric, ok := commandStatusCounters[status]; ok {
		incrementCounter(ctx, collector, metric, BuildCommandLabels(commandType, status))
	}
}

// RecordQueryMetrics records duration and call count of one query handler call.
func RecordQueryMetrics(
	ctx context.Context,
	collector MetricsCollector,
	queryType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildQueryLabels(queryType, status)
	recordDuration(ctx, collector, QueryHandlerDurationMetric, duration, labels)
	incrementCounter(ctx, collector, QueryHandlerCallsMetric, labels)

	if metric, ok := queryStatusCounters[status]; ok {
		incrementCounter(ctx, collector, metric, BuildQueryLabels(queryType, status))
	}
}

// RecordRetryMetrics records the retry summary a command handler reported in its result.
func RecordRetryMetrics(ctx context.Context, collector MetricsCollector, commandType string, result HandlerResult) {
	if collector == nil {
		return
	}

	if retries := result.RetryAttempts - 1; retries > 0 {
		incrementCounter(ctx, collector, CommandHandlerRetriesMetric,
			BuildRetryLabels(commandType, retries, result.LastErrorType))

		recordDuration(ctx, collector, CommandHandlerRetryDelayMetric, result.TotalRetryDelay,
			map[string]string{LogAttrCommandType: commandType})
	}

	if result.RetriesExhausted {
		incrementCounter(ctx, collector, CommandHandlerMaxRetriesReachedMetric,
			map[string]string{LogAttrCommandType: commandType, LabelErrorType: result.LastErrorType})
	}
}

func recordDuration(
	ctx context.Context,
	collector MetricsCollector,
	metric string,
	duration time.Duration,
	labels map[string]string,
) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	collector.RecordDuration(metric, duration, labels)
}

func incrementCounter(ctx context.Context, collector MetricsCollector, metric string, labels map[string]string) {
	if contextualCollector, ok := collector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metric, labels)
		return
	}

	collector.IncrementCounter(metric, labels)
}

// StartSpan starts a handler span. Without a collector it returns ctx and a nil span.
func StartSpan(
	ctx context.Context,
	tracingCollector TracingCollector,
	spanName string,
	attrs map[string]string,
) (context.Context, SpanContext) {
	if tracingCollector == nil {
		return ctx, nil
	}

	return tracingCollector.StartSpan(ctx, spanName, attrs)
}

// FinishSpan ends a span started by StartSpan with status, duration and the error, if any.
func FinishSpan(
	tracingCollector TracingCollector,
	span SpanContext,
	status string,
	duration time.Duration,
	err error,
) {
	if tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		LogAttrStatus:     status,
		LogAttrDurationMS: strconv.FormatFloat(ToMilliseconds(duration), 'f', 2, 64),
	}

	if err != nil {
		attrs[LogAttrError] = err.Error()
	}

	tracingCollector.FinishSpan(span, status, attrs)
}

// LogInfo logs at info level, preferring the contextual logger.
func LogInfo(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	switch {
	case contextualLogger != nil:
		contextualLogger.InfoContext(ctx, msg, args...)
	case logger != nil:
		logger.Info(msg, args...)
	}
}

// LogWarn logs at warn level, preferring the contextual logger.
func LogWarn(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	switch {
	case contextualLogger != nil:
		contextualLogger.WarnContext(ctx, msg, args...)
	case logger != nil:
		logger.Warn(msg, args...)
	}
}

// LogError logs at error level, preferring the contextual logger.
func LogError(ctx context.Context, logger Logger, contextualLogger ContextualLogger, msg string, args ...any) {
	switch {
	case contextualLogger != nil:
		contextualLogger.ErrorContext(ctx, msg, args...)
	case logger != nil:
		logger.Error(msg, args...)
	}
}

// IsCancellationError reports whether the caller canceled the context.
func IsCancellationError(err error) bool {
	return errors.Is(err, context.Canceled)
}

// IsTimeoutError reports whether the context deadline passed.
func IsTimeoutError(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

// IsLockTimeoutError reports whether the store gave up waiting for a book lock.
func IsLockTimeoutError(err error) bool {
	return errors.Is(err, rental.ErrLockTimeout)
}

// IsRejectionError reports whether a business rule refused the operation.
func IsRejectionError(err error) bool {
	return rental.IsNotFound(err) ||
		errors.Is(err, rental.ErrValidation) ||
		errors.Is(err, rental.ErrBookAlreadyBorrowed) ||
		errors.Is(err, rental.ErrBookNotBorrowed) ||
		errors.Is(err, rental.ErrEmailAlreadyExists)
}
