package rental

import "context"

// Tx is the unit of work the rent and return transactions run in.
// Everything done through a Tx is committed together or not at all.
type Tx interface {
	FindUserByID(ctx context.Context, id int64) (User, bool, error)

	// FindAndLockBook returns the book and holds an exclusive lock on it until the
	// transaction ends. Concurrent callers block; a caller waiting longer than the
	// configured lock timeout fails with ErrLockTimeout.
	FindAndLockBook(ctx context.Context, id int64) (Book, bool, error)

	FindBooking(ctx context.Context, userID int64, bookID int64) (Booking, bool, error)

	// CreateBooking and DeleteBooking are unconditional. The caller checks existence
	// while holding the book lock.
	CreateBooking(ctx context.Context, booking Booking) error
	DeleteBooking(ctx context.Context, booking Booking) error

	// UpdateBook overwrites the mutable fields of a locked book.
	UpdateBook(ctx context.Context, book Book) error
}

// TxFunc is the work executed inside a transaction. Returning an error rolls back.
type TxFunc func(ctx context.Context, tx Tx) error
