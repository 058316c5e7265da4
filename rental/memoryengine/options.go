package memoryengine

import (
	"time"

	"github.com/AntonStoeckl/library-rental-go/rental"
)

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithLockTimeout sets how long FindAndLockBook waits for a book that another transaction holds.
func WithLockTimeout(timeout time.Duration) Option {
	return func(s *Store) error {
		if timeout <= 0 {
			return rental.ErrInvalidLockTimeout
		}

		s.lockTimeout = timeout

		return nil
	}
}

// WithLogger sets the logger for the Store.
// Debug level receives commits and rollbacks, Warn level receives lock timeouts.
func WithLogger(logger rental.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}
