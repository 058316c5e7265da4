package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/AntonStoeckl/library-rental-go/rental"
)

const (
	logMsgSQLExecuted    = "rentalstore: SQL executed for "
	logMsgOperation      = "rentalstore: operation completed: "
	logMsgOperationFail  = "rentalstore: operation failed: "
	logMsgDBQueryFailed  = "rentalstore: database query failed"
	logMsgDBExecFailed   = "rentalstore: database exec failed"
	logMsgBuildSQLFailed = "rentalstore: failed to build SQL"
	logMsgScanFailed     = "rentalstore: failed to scan database row"
	logMsgBeginTxFailed  = "rentalstore: failed to begin transaction"
	logMsgCommitFailed   = "rentalstore: failed to commit transaction"
	logMsgRollbackFailed = "rentalstore: failed to rollback transaction"
	logMsgLockTimeout    = "rentalstore: lock wait timed out"

	logAttrError      = "error"
	logAttrQuery      = "query"
	logAttrDurationMS = "duration_ms"
	logAttrRowCount   = "row_count"
	logAttrErrorType  = "error_type"

	metricOperationDuration = "rentalstore_operation_duration_seconds"
	metricRowsReturned      = "rentalstore_rows_returned"
	metricDatabaseErrors    = "rentalstore_database_errors_total"
	metricLockTimeouts      = "rentalstore_lock_timeouts_total"

	spanNamePrefix     = "rentalstore."
	spanAttrOperation  = "operation"
	spanAttrErrorType  = "error_type"
	spanAttrDurationMS = "duration_ms"
	spanAttrRowCount   = "row_count"

	statusSuccess     = "success"
	statusError       = "error"
	statusRejected    = "rejected"
	statusLockTimeout = "lock_timeout"

	errorTypeLockTimeout     = "lock_timeout"
	errorTypeRejected        = "rejected"
	errorTypeContextCanceled = "context_canceled"
	errorTypeContextTimeout  = "context_timeout"
	errorTypeBuildQuery      = "build_query"
	errorTypeDatabaseQuery   = "database_query"
	errorTypeRowScan         = "row_scan"
	errorTypeDatabaseWrite   = "database_write"
	errorTypeTransaction     = "transaction"
	errorTypeInvalidEntity   = "invalid_stored_entity"
	errorTypeUnknown         = "unknown"

	operationCreateSchema = "create_schema"
	operationTransaction  = "transaction"
)

// operationObserver bundles the span, the metrics and the log line of one store operation.
type operationObserver struct {
	s         *Store
	ctx       context.Context
	operation string
	span      SpanContext
	start     time.Time
	rowCount  int
	hasRows   bool
}

// startOperation opens a tracing span for the operation and starts its clock.
func (s *Store) startOperation(ctx context.Context, operation string) (*operationObserver, context.Context) {
	newCtx, span := s.startTraceSpan(ctx, spanNamePrefix+operation, map[string]string{spanAttrOperation: operation})

	return &operationObserver{
		s:         s,
		ctx:       newCtx,
		operation: operation,
		span:      span,
		start:     time.Now(),
	}, newCtx
}

// withRowCount records how many rows a list operation returned.
func (o *operationObserver) withRowCount(count int) {
	o.rowCount = count
	o.hasRows = true
}

// finish records duration, row count and error metrics, closes the span and logs the outcome.
func (o *operationObserver) finish(err error) {
	duration := time.Since(o.start)
	status := statusFor(err)

	o.s.recordDurationMetricsContext(o.ctx, metricOperationDuration, duration, o.operation, status)

	attrs := map[string]string{spanAttrDurationMS: fmt.Sprintf("%.2f", o.s.toMilliseconds(duration))}
	logArgs := []any{logAttrDurationMS, o.s.toMilliseconds(duration)}

	if o.hasRows {
		o.s.recordValueMetricsContext(o.ctx, metricRowsReturned, float64(o.rowCount), o.operation, status)
		attrs[spanAttrRowCount] = fmt.Sprintf("%d", o.rowCount)
		logArgs = append(logArgs, logAttrRowCount, o.rowCount)
	}

	if err == nil {
		o.s.finishTraceSpan(o.span, statusSuccess, attrs)
		o.s.logOperation(o.ctx, o.operation, logArgs...)

		return
	}

	errorType := classifyError(err)
	attrs[spanAttrErrorType] = errorType
	o.s.finishTraceSpan(o.span, status, attrs)

	switch status {
	case statusLockTimeout:
		o.s.recordLockTimeoutMetricsContext(o.ctx, o.operation)
		o.s.logWarn(o.ctx, logMsgLockTimeout, append(logArgs, logAttrError, err.Error())...)
	case statusRejected:
		o.s.logOperation(o.ctx, o.operation, append(logArgs, logAttrErrorType, errorType, logAttrError, err.Error())...)
	default:
		o.s.recordErrorMetricsContext(o.ctx, o.operation, errorType)
		o.s.logError(o.ctx, logMsgOperationFail+o.operation, err, append(logArgs, logAttrErrorType, errorType)...)
	}
}

// statusFor maps an operation outcome to the status label used for spans and metrics.
func statusFor(err error) string {
	switch {
	case err == nil:
		return statusSuccess
	case errors.Is(err, rental.ErrLockTimeout):
		return statusLockTimeout
	case isRejection(err):
		return statusRejected
	default:
		return statusError
	}
}

// classifyError assigns an error_type label to a failed operation.
func classifyError(err error) string {
	switch {
	case errors.Is(err, rental.ErrLockTimeout):
		return errorTypeLockTimeout
	case isRejection(err):
		return errorTypeRejected
	case errors.Is(err, context.Canceled):
		return errorTypeContextCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeContextTimeout
	case errors.Is(err, rental.ErrInvalidStoredEntity):
		return errorTypeInvalidEntity
	case errors.Is(err, rental.ErrBuildingQueryFailed):
		return errorTypeBuildQuery
	case errors.Is(err, rental.ErrScanningDBRowFailed):
		return errorTypeRowScan
	case errors.Is(err, rental.ErrQueryingFailed):
		return errorTypeDatabaseQuery
	case errors.Is(err, rental.ErrWritingFailed):
		return errorTypeDatabaseWrite
	case errors.Is(err, rental.ErrTransactionFailed):
		return errorTypeTransaction
	default:
		return errorTypeUnknown
	}
}

// isRejection reports whether err is a business outcome rather than an infrastructure failure.
func isRejection(err error) bool {
	return rental.IsNotFound(err) ||
		errors.Is(err, rental.ErrValidation) ||
		errors.Is(err, rental.ErrBookAlreadyBorrowed) ||
		errors.Is(err, rental.ErrBookNotBorrowed) ||
		errors.Is(err, rental.ErrEmailAlreadyExists)
}

// logQueryWithDuration logs SQL statements with execution time at debug level if a logger is configured.
func (s *Store) logQueryWithDuration(ctx context.Context, sqlQuery string, action string, duration time.Duration) {
	msg := logMsgSQLExecuted + action
	args := []any{logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery}

	if s.contextualLogger != nil {
		s.contextualLogger.DebugContext(ctx, msg, args...)
		return
	}

	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (s *Store) logOperation(ctx context.Context, action string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if s.logger != nil {
		s.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical issues at warn level if a logger is configured.
func (s *Store) logWarn(ctx context.Context, message string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.WarnContext(ctx, message, args...)
		return
	}

	if s.logger != nil {
		s.logger.Warn(message, args...)
	}
}

// logError logs error information at the error level if a logger is configured.
func (s *Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if s.contextualLogger != nil {
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
		return
	}

	if s.logger != nil {
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s *Store) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordDurationMetricsContext records duration metrics with context if the collector supports it.
func (s *Store) recordDurationMetricsContext(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	operation, status string,
) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"status":          status,
	}

	if contextualCollector, ok := s.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
		return
	}

	s.metricsCollector.RecordDuration(metricName, duration, labels)
}

// recordValueMetricsContext records value metrics with context if the collector supports it.
func (s *Store) recordValueMetricsContext(
	ctx context.Context,
	metricName string,
	value float64,
	operation, status string,
) {
	if s.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"status":          status,
	}

	if contextualCollector, ok := s.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordValueContext(ctx, metricName, value, labels)
		return
	}

	s.metricsCollector.RecordValue(metricName, value, labels)
}

// recordErrorMetricsContext records error metrics with context if the collector supports it.
func (s *Store) recordErrorMetricsContext(ctx context.Context, operation, errorType string) {
	s.incrementCounterContext(ctx, metricDatabaseErrors, map[string]string{
		spanAttrOperation: operation,
		"status":          statusError,
		spanAttrErrorType: errorType,
	})
}

// recordLockTimeoutMetricsContext counts transactions that gave up waiting for a book lock.
func (s *Store) recordLockTimeoutMetricsContext(ctx context.Context, operation string) {
	s.incrementCounterContext(ctx, metricLockTimeouts, map[string]string{
		spanAttrOperation: operation,
		"conflict_type":   "lock_wait",
	})
}

func (s *Store) incrementCounterContext(ctx context.Context, metricName string, labels map[string]string) {
	if s.metricsCollector == nil {
		return
	}

	if contextualCollector, ok := s.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricName, labels)
		return
	}

	s.metricsCollector.IncrementCounter(metricName, labels)
}

// startTraceSpan starts a tracing span if the tracing collector is configured.
func (s *Store) startTraceSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, SpanContext) {
	if s.tracingCollector != nil {
		return s.tracingCollector.StartSpan(ctx, name, attrs)
	}

	return ctx, nil
}

// finishTraceSpan finishes a tracing span if the tracing collector is configured.
func (s *Store) finishTraceSpan(span SpanContext, status string, attrs map[string]string) {
	if s.tracingCollector == nil || span == nil {
		return
	}

	span.SetStatus(status)
	s.tracingCollector.FinishSpan(span, status, attrs)
}
