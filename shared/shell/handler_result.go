package shell

import "time"

// HandlerResult is what a command handler reports besides its error: the id a registration was
// assigned and how the lock-timeout retries went. observable.CommandWrapper turns the retry part into metrics.
type HandlerResult struct {
	// AssignedID is the id the store assigned to a newly registered entity, 0 for other commands.
	AssignedID int64

	// RetryAttempts counts transactions started, the first included.
	RetryAttempts int

	// TotalRetryDelay is the time spent waiting between attempts, execution time excluded.
	TotalRetryDelay time.Duration

	// LastErrorType is "none", "lock_timeout", "context_canceled", "context_deadline_exceeded" or "other".
	LastErrorType string

	// RetriesExhausted is set when the last attempt still hit a lock timeout.
	RetriesExhausted bool
}

// NewSuccessResult creates a HandlerResult for successful operations.
func NewSuccessResult(retryMetrics RetryMetrics) HandlerResult {
	return resultFrom(retryMetrics)
}

// NewRegisteredResult creates a HandlerResult for a registration that was assigned id.
func NewRegisteredResult(id int64, retryMetrics RetryMetrics) HandlerResult {
	result := resultFrom(retryMetrics)
	result.AssignedID = id

	return result
}

// NewErrorResult creates a HandlerResult that goes along with an error.
func NewErrorResult(retryMetrics RetryMetrics) HandlerResult {
	return resultFrom(retryMetrics)
}

func resultFrom(retryMetrics RetryMetrics) HandlerResult {
	return HandlerResult{
		RetryAttempts:    retryMetrics.Attempts,
		TotalRetryDelay:  retryMetrics.TotalDelay,
		LastErrorType:    retryMetrics.LastErrorType,
		RetriesExhausted: retryMetrics.RetriesExhausted,
	}
}
