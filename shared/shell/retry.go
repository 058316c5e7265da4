package shell

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-rental-go/rental"
)

const (
	defaultMaxAttempts  = 3
	defaultBaseDelay    = 50 * time.Millisecond
	defaultMaxDelay     = time.Second
	defaultJitterFactor = 0.3

	errorTypeNone                    = "none"
	errorTypeLockTimeout             = "lock_timeout"
	errorTypeContextCanceled         = "context_canceled"
	errorTypeContextDeadlineExceeded = "context_deadline_exceeded"
	errorTypeOther                   = "other"
)

var (
	// ErrNilMetricsCollector is returned when a nil metrics collector is provided to WithMetrics.
	ErrNilMetricsCollector = errors.New("metrics collector must not be nil")

	// ErrEmptyCommandType is returned when an empty command type is provided to WithMetrics.
	ErrEmptyCommandType = errors.New("command type must not be empty")

	// ErrInvalidMaxAttempts is returned when max attempts are not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrNegativeBaseDelay is returned when the base delay is negative.
	ErrNegativeBaseDelay = errors.New("base delay must not be negative")

	// ErrInvalidMaxDelay is returned when the delay cap is not positive.
	ErrInvalidMaxDelay = errors.New("max delay must be positive")

	// ErrInvalidJitterFactor is returned when the jitter factor is not between 0.0 and 1.0.
	ErrInvalidJitterFactor = errors.New("jitter factor must be between 0.0 and 1.0")
)

// RetryableFunc is one attempt, typically one store transaction.
type RetryableFunc func(ctx context.Context) error

// RetryMetrics describes how a retried execution went.
type RetryMetrics struct {
	Attempts         int
	TotalDelay       time.Duration
	LastErrorType    string
	RetriesExhausted bool
}

// retryPolicy decides how often and how long to wait between attempts.
type retryPolicy struct {
	maxAttempts  int
	baseDelay    time.Duration
	maxDelay     time.Duration
	jitterFactor float64

	metricsCollector MetricsCollector
	commandType      string
}

// backoff returns the wait before the given retry (1 for the first retry):
// baseDelay * 2^(retry-1) capped at maxDelay, plus up to jitterFactor of that.
func (p *retryPolicy) backoff(retry int) time.Duration {
	delay := p.baseDelay
	for i := 1; i < retry && delay < p.maxDelay; i++ {
		delay *= 2
	}

	delay = min(delay, p.maxDelay)

	jitter := rand.Float64() * float64(delay) * p.jitterFactor //nolint:gosec //math/rand is sufficient for jitter

	return delay + time.Duration(jitter)
}

// RetryWithExponentialBackoff runs fn until it succeeds, fails permanently, or maxAttempts
// attempts were made.
//
// Only rental.ErrLockTimeout is retried: the transaction was rolled back without side effects
// and the holder of the book lock is expected to finish soon. Everything else, including
// context.DeadlineExceeded, fails fast.
//
// Default schedule: attempt, ~50ms, attempt, ~100ms, attempt.
func RetryWithExponentialBackoff(
	ctx context.Context,
	fn RetryableFunc,
	options ...RetryOption,
) (RetryMetrics, error) {
	policy := &retryPolicy{
		maxAttempts:  defaultMaxAttempts,
		baseDelay:    defaultBaseDelay,
		maxDelay:     defaultMaxDelay,
		jitterFactor: defaultJitterFactor,
	}

	metrics := RetryMetrics{LastErrorType: errorTypeNone}

	for _, option := range options {
		if err := option(policy); err != nil {
			return metrics, err
		}
	}

	var lastErr error

	for attempt := 1; attempt <= policy.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := policy.backoff(attempt - 1)

			if err := sleep(ctx, delay); err != nil {
				metrics.LastErrorType = errorTypeOf(err)
				return metrics, err
			}

			metrics.TotalDelay += delay
			policy.recordBackoff(ctx, attempt, delay)
		}

		metrics.Attempts = attempt

		lastErr = fn(ctx)
		metrics.LastErrorType = errorTypeOf(lastErr)

		if !isRetryableError(lastErr) {
			return metrics, lastErr
		}

		policy.recordFailedAttempt(ctx, attempt, lastErr)
	}

	metrics.RetriesExhausted = true

	return metrics, lastErr
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// recordBackoff records each wait before an attempt, labeled with the attempt it precedes.
func (p *retryPolicy) recordBackoff(ctx context.Context, attempt int, delay time.Duration) {
	if p.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		LogAttrCommandType: p.commandType,
		LabelAttemptNumber: strconv.Itoa(attempt),
	}

	recordDuration(ctx, p.metricsCollector, CommandHandlerRetryBackoffMetric, delay, labels)
}

// recordFailedAttempt counts each attempt that ended with a retryable error.
func (p *retryPolicy) recordFailedAttempt(ctx context.Context, attempt int, err error) {
	if p.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		LogAttrCommandType: p.commandType,
		LabelAttemptNumber: strconv.Itoa(attempt),
		LabelErrorType:     errorTypeOf(err),
	}

	incrementCounter(ctx, p.metricsCollector, CommandHandlerRetryAttemptsMetric, labels)
}

func isRetryableError(err error) bool {
	return errors.Is(err, rental.ErrLockTimeout)
}

// errorTypeOf labels an attempt's outcome for metrics and HandlerResult.
func errorTypeOf(err error) string {
	switch {
	case err == nil:
		return errorTypeNone
	case errors.Is(err, rental.ErrLockTimeout):
		return errorTypeLockTimeout
	case errors.Is(err, context.Canceled):
		return errorTypeContextCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return errorTypeContextDeadlineExceeded
	default:
		return errorTypeOther
	}
}

// RetryOption configures retry behavior using the functional options pattern.
type RetryOption func(*retryPolicy) error

// WithMaxAttempts sets the maximum number of attempts, the first one included.
func WithMaxAttempts(attempts int) RetryOption {
	return func(p *retryPolicy) error {
		if attempts <= 0 {
			return ErrInvalidMaxAttempts
		}

		p.maxAttempts = attempts

		return nil
	}
}

// WithBaseDelay sets the wait before the first retry. Each further retry doubles it.
func WithBaseDelay(delay time.Duration) RetryOption {
	return func(p *retryPolicy) error {
		if delay < 0 {
			return ErrNegativeBaseDelay
		}

		p.baseDelay = delay

		return nil
	}
}

// WithMaxDelay caps the exponential part of the wait. Jitter comes on top.
func WithMaxDelay(delay time.Duration) RetryOption {
	return func(p *retryPolicy) error {
		if delay <= 0 {
			return ErrInvalidMaxDelay
		}

		p.maxDelay = delay

		return nil
	}
}

// WithJitterFactor sets how much random extra wait is added, as a fraction of the backoff.
// Valid range: 0.0 (no jitter) to 1.0.
func WithJitterFactor(factor float64) RetryOption {
	return func(p *retryPolicy) error {
		if factor < 0.0 || factor > 1.0 {
			return ErrInvalidJitterFactor
		}

		p.jitterFactor = factor

		return nil
	}
}

// WithMetrics records every backoff and every failed attempt. The per-call summary
// (retries, total delay, exhaustion) is recorded by observable.CommandWrapper from the HandlerResult.
func WithMetrics(collector MetricsCollector, commandType string) RetryOption {
	return func(p *retryPolicy) error {
		if collector == nil {
			return ErrNilMetricsCollector
		}

		if commandType == "" {
			return ErrEmptyCommandType
		}

		p.metricsCollector = collector
		p.commandType = commandType

		return nil
	}
}
