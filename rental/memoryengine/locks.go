package memoryengine

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/AntonStoeckl/library-rental-go/rental"
)

// lockTable holds one exclusive lock per book id. Entries are created lazily and never removed.
type lockTable struct {
	mu    sync.Mutex
	locks map[int64]*semaphore.Weighted
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[int64]*semaphore.Weighted)}
}

func (lt *lockTable) lockFor(bookID int64) *semaphore.Weighted {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	sem, ok := lt.locks[bookID]
	if !ok {
		sem = semaphore.NewWeighted(1)
		lt.locks[bookID] = sem
	}

	return sem
}

// acquire blocks until the book lock is free, ctx is done, or timeout elapses.
// Cancellation of ctx is returned as ctx's error, an elapsed timeout as rental.ErrLockTimeout.
func (lt *lockTable) acquire(ctx context.Context, bookID int64, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := lt.lockFor(bookID).Acquire(waitCtx, 1)
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return rental.ErrLockTimeout
	}

	return err
}

func (lt *lockTable) release(bookID int64) {
	lt.lockFor(bookID).Release(1)
}
