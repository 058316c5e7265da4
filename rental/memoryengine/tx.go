package memoryengine

import (
	"context"
	"errors"

	"github.com/AntonStoeckl/library-rental-go/rental"
)

type bookingWrite struct {
	booking rental.Booking
	exists  bool
}

// transaction stages writes until commit. Reads see the transaction's own writes first.
type transaction struct {
	store         *Store
	heldLocks     map[int64]struct{}
	bookWrites    map[int64]rental.Book
	bookingWrites map[bookingKey]bookingWrite
	closed        bool
}

func newTransaction(s *Store) *transaction {
	return &transaction{
		store:         s,
		heldLocks:     make(map[int64]struct{}),
		bookWrites:    make(map[int64]rental.Book),
		bookingWrites: make(map[bookingKey]bookingWrite),
	}
}

// close releases every lock the transaction holds. Staged writes not yet committed are dropped.
func (tx *transaction) close() {
	for bookID := range tx.heldLocks {
		tx.store.locks.release(bookID)
	}

	tx.heldLocks = nil
	tx.closed = true
}

func (tx *transaction) checkOpen() error {
	if tx.closed {
		return errors.Join(rental.ErrTransactionFailed, errors.New("transaction already closed"))
	}

	return nil
}

func (tx *transaction) FindUserByID(ctx context.Context, id int64) (rental.User, bool, error) {
	if err := tx.checkOpen(); err != nil {
		return rental.User{}, false, err
	}

	return tx.store.FindUserByID(ctx, id)
}

func (tx *transaction) FindAndLockBook(ctx context.Context, id int64) (rental.Book, bool, error) {
	if err := tx.checkOpen(); err != nil {
		return rental.Book{}, false, err
	}

	if _, held := tx.heldLocks[id]; !held {
		if err := tx.store.locks.acquire(ctx, id, tx.store.lockTimeout); err != nil {
			if errors.Is(err, rental.ErrLockTimeout) {
				tx.store.logWarn(logMsgLockTimeout, logAttrBookID, id)
			}

			return rental.Book{}, false, err
		}

		tx.heldLocks[id] = struct{}{}
	}

	if book, staged := tx.bookWrites[id]; staged {
		return book, true, nil
	}

	book, found, _ := tx.store.FindBookByID(ctx, id)
	if !found {
		// A missing row locks nothing, same as SELECT … FOR UPDATE.
		tx.store.locks.release(id)
		delete(tx.heldLocks, id)
	}

	return book, found, nil
}

func (tx *transaction) FindBooking(_ context.Context, userID int64, bookID int64) (rental.Booking, bool, error) {
	if err := tx.checkOpen(); err != nil {
		return rental.Booking{}, false, err
	}

	key := bookingKey{userID: userID, bookID: bookID}
	if write, staged := tx.bookingWrites[key]; staged {
		return write.booking, write.exists, nil
	}

	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()

	booking, ok := tx.store.bookings[key]

	return booking, ok, nil
}

func (tx *transaction) CreateBooking(_ context.Context, booking rental.Booking) error {
	if err := tx.checkOpen(); err != nil {
		return err
	}

	tx.bookingWrites[keyOf(booking)] = bookingWrite{booking: booking, exists: true}

	return nil
}

func (tx *transaction) DeleteBooking(_ context.Context, booking rental.Booking) error {
	if err := tx.checkOpen(); err != nil {
		return err
	}

	tx.bookingWrites[keyOf(booking)] = bookingWrite{booking: booking, exists: false}

	return nil
}

// UpdateBook stages the new state of a book. The book must be locked by this transaction.
func (tx *transaction) UpdateBook(_ context.Context, book rental.Book) error {
	if err := tx.checkOpen(); err != nil {
		return err
	}

	if _, held := tx.heldLocks[book.ID()]; !held {
		return errors.Join(rental.ErrWritingFailed, errors.New("book is not locked by this transaction"))
	}

	tx.bookWrites[book.ID()] = book

	return nil
}

func keyOf(booking rental.Booking) bookingKey {
	return bookingKey{userID: booking.UserID(), bookID: booking.BookID()}
}
