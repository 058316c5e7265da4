package shell

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-rental-go/rental"
)

func Test_RetryWithExponentialBackoff_Success_NoRetries(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		return nil
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn)

	assert.NoError(t, err)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, 1, meta.Attempts)
	assert.Equal(t, time.Duration(0), meta.TotalDelay)
	assert.Equal(t, "none", meta.LastErrorType)
	assert.False(t, meta.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_RetryOnLockTimeout(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		if callCount < 3 {
			return errors.Join(rental.ErrLockTimeout, errors.New("canceling statement due to lock timeout"))
		}
		return nil
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn, WithBaseDelay(time.Millisecond))

	assert.NoError(t, err)
	assert.Equal(t, 3, callCount)
	assert.Equal(t, 3, meta.Attempts)
	assert.Greater(t, meta.TotalDelay, time.Duration(0))
	assert.Equal(t, "none", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_ExhaustsRetries(t *testing.T) {
	ctx := context.Background()
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		return rental.ErrLockTimeout
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn, WithBaseDelay(time.Millisecond))

	assert.ErrorIs(t, err, rental.ErrLockTimeout)
	assert.Equal(t, defaultMaxAttempts, callCount)
	assert.Equal(t, defaultMaxAttempts, meta.Attempts)
	assert.Equal(t, "lock_timeout", meta.LastErrorType)
	assert.True(t, meta.RetriesExhausted)
}

func Test_RetryWithExponentialBackoff_BusinessErrorsFailFast(t *testing.T) {
	ctx := context.Background()

	for _, businessErr := range []error{
		rental.ErrBookNotAvailable,
		rental.ErrBookAlreadyBorrowed,
		rental.ErrBookNotBorrowed,
		rental.ErrUserNotFound,
		context.DeadlineExceeded,
	} {
		t.Run(businessErr.Error(), func(t *testing.T) {
			callCount := 0
			fn := func(_ context.Context) error {
				callCount++
				return businessErr
			}

			meta, err := RetryWithExponentialBackoff(ctx, fn)

			assert.ErrorIs(t, err, businessErr)
			assert.Equal(t, 1, callCount)
			assert.Equal(t, 1, meta.Attempts)
			assert.False(t, meta.RetriesExhausted)
		})
	}
}

func Test_RetryWithExponentialBackoff_ContextCanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	callCount := 0

	fn := func(_ context.Context) error {
		callCount++
		cancel()
		return rental.ErrLockTimeout
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn, WithBaseDelay(time.Second))

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, "context_canceled", meta.LastErrorType)
}

func Test_RetryWithExponentialBackoff_WithAllOptions(t *testing.T) {
	ctx := context.Background()
	callCount := 0
	collector := &countingCollector{}

	fn := func(_ context.Context) error {
		callCount++
		if callCount < 2 {
			return rental.ErrLockTimeout
		}
		return nil
	}

	meta, err := RetryWithExponentialBackoff(ctx, fn,
		WithMaxAttempts(3),
		WithBaseDelay(5*time.Millisecond),
		WithJitterFactor(0.1),
		WithMetrics(collector, "RentBook"),
	)

	assert.NoError(t, err)
	assert.Equal(t, 2, callCount)
	assert.Equal(t, 2, meta.Attempts)
	assert.Greater(t, meta.TotalDelay, time.Duration(0))
	assert.Equal(t, 1, collector.counters[CommandHandlerRetryAttemptsMetric])
	assert.Equal(t, 1, collector.durations[CommandHandlerRetryBackoffMetric])
	assert.Zero(t, collector.counters[CommandHandlerRetriesMetric], "the per-call summary is recorded by the command wrapper")
}

func Test_RetryWithExponentialBackoff_InvalidOptions(t *testing.T) {
	ctx := context.Background()
	fn := func(_ context.Context) error { return nil }

	_, err := RetryWithExponentialBackoff(ctx, fn, WithMaxAttempts(0))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)

	_, err = RetryWithExponentialBackoff(ctx, fn, WithBaseDelay(-1*time.Second))
	assert.ErrorIs(t, err, ErrNegativeBaseDelay)

	_, err = RetryWithExponentialBackoff(ctx, fn, WithMaxDelay(0))
	assert.ErrorIs(t, err, ErrInvalidMaxDelay)

	_, err = RetryWithExponentialBackoff(ctx, fn, WithJitterFactor(1.5))
	assert.ErrorIs(t, err, ErrInvalidJitterFactor)

	_, err = RetryWithExponentialBackoff(ctx, fn, WithMetrics(nil, "RentBook"))
	assert.ErrorIs(t, err, ErrNilMetricsCollector)

	_, err = RetryWithExponentialBackoff(ctx, fn, WithMetrics(&countingCollector{}, ""))
	assert.ErrorIs(t, err, ErrEmptyCommandType)
}

func Test_RetryPolicy_Backoff_DoublesUpToTheCap(t *testing.T) {
	policy := &retryPolicy{baseDelay: 10 * time.Millisecond, maxDelay: 35 * time.Millisecond}

	assert.Equal(t, 10*time.Millisecond, policy.backoff(1))
	assert.Equal(t, 20*time.Millisecond, policy.backoff(2))
	assert.Equal(t, 35*time.Millisecond, policy.backoff(3))
	assert.Equal(t, 35*time.Millisecond, policy.backoff(40))
}

func Test_RetryPolicy_Backoff_AddsBoundedJitter(t *testing.T) {
	policy := &retryPolicy{baseDelay: 10 * time.Millisecond, maxDelay: time.Second, jitterFactor: 0.5}

	for range 20 {
		delay := policy.backoff(1)
		assert.GreaterOrEqual(t, delay, 10*time.Millisecond)
		assert.LessOrEqual(t, delay, 15*time.Millisecond)
	}
}

type countingCollector struct {
	counters  map[string]int
	durations map[string]int
}

func (c *countingCollector) RecordDuration(metric string, _ time.Duration, _ map[string]string) {
	if c.durations == nil {
		c.durations = make(map[string]int)
	}
	c.durations[metric]++
}

func (c *countingCollector) IncrementCounter(metric string, _ map[string]string) {
	if c.counters == nil {
		c.counters = make(map[string]int)
	}
	c.counters[metric]++
}

func (c *countingCollector) RecordValue(_ string, _ float64, _ map[string]string) {}
