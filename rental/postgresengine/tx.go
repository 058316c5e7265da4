package postgresengine

import (
	"context"

	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/rental/postgresengine/internal/adapters"
)

// transaction implements rental.Tx on top of an open database transaction.
type transaction struct {
	store *Store
	tx    adapters.DBTx
}

func (t *transaction) FindUserByID(ctx context.Context, id int64) (rental.User, bool, error) {
	return findUserByID(ctx, t.store, t.tx, id)
}

func (t *transaction) FindAndLockBook(ctx context.Context, id int64) (rental.Book, bool, error) {
	return findAndLockBook(ctx, t.store, t.tx, id)
}

func (t *transaction) FindBooking(ctx context.Context, userID int64, bookID int64) (rental.Booking, bool, error) {
	return findBooking(ctx, t.store, t.tx, userID, bookID)
}

func (t *transaction) CreateBooking(ctx context.Context, booking rental.Booking) error {
	return createBooking(ctx, t.store, t.tx, booking)
}

func (t *transaction) DeleteBooking(ctx context.Context, booking rental.Booking) error {
	return deleteBooking(ctx, t.store, t.tx, booking)
}

func (t *transaction) UpdateBook(ctx context.Context, book rental.Book) error {
	return updateBook(ctx, t.store, t.tx, book)
}
