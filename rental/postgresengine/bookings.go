package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/rental/postgresengine/internal/adapters"
)

const (
	operationFindBooking   = "find_booking"
	operationCreateBooking = "create_booking"
	operationDeleteBooking = "delete_booking"
)

func scanBooking(rows adapters.DBRows) (rental.Booking, error) {
	var userID, bookID int64

	if err := rows.Scan(&userID, &bookID); err != nil {
		return rental.Booking{}, errors.Join(rental.ErrScanningDBRowFailed, err)
	}

	booking, err := rental.BuildBooking(userID, bookID)
	if err != nil {
		return rental.Booking{}, errors.Join(rental.ErrInvalidStoredEntity, err)
	}

	return booking, nil
}

func bookingKey(userID int64, bookID int64) goqu.Ex {
	return goqu.Ex{
		colUserID: userID,
		colBookID: bookID,
	}
}

func findBooking(ctx context.Context, s *Store, db adapters.Querier, userID int64, bookID int64) (rental.Booking, bool, error) {
	stmt := builder().
		From(tableBookings).
		Select(colUserID, colBookID).
		Where(bookingKey(userID, bookID))

	return queryOne(ctx, s, db, operationFindBooking, stmt, scanBooking)
}

func createBooking(ctx context.Context, s *Store, db adapters.Querier, booking rental.Booking) error {
	stmt := builder().
		Insert(tableBookings).
		Rows(goqu.Record{
			colUserID: booking.UserID(),
			colBookID: booking.BookID(),
		}).
		Prepared(true)

	return execute(ctx, s, db, operationCreateBooking, stmt)
}

func deleteBooking(ctx context.Context, s *Store, db adapters.Querier, booking rental.Booking) error {
	stmt := builder().
		Delete(tableBookings).
		Where(bookingKey(booking.UserID(), booking.BookID())).
		Prepared(true)

	return execute(ctx, s, db, operationDeleteBooking, stmt)
}
