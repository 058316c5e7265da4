package rentbook

import (
	"github.com/AntonStoeckl/library-rental-go/rental"
)

// State is what the handler read, inside the transaction, before deciding.
// Fields after a failed prerequisite are left at their zero value.
type State struct {
	UserFound    bool
	BookFound    bool
	Book         rental.Book
	BookingFound bool
}

// Decide implements the business rules for renting a book. It is a pure function.
//
// Business Rules:
//
//	GIVEN: a user with UserID and a locked book with BookID
//	WHEN: RentBook command is received
//	THEN: a booking (UserID, BookID) is created and availableCopies drops by one
//	ERROR: ErrUserNotFound if the user does not exist
//	ERROR: ErrBookNotFound if the book does not exist
//	ERROR: ErrBookNotAvailable (also matches ErrBookNotFound) if no copy is left
//	ERROR: ErrBookAlreadyBorrowed if this user already has this book
func Decide(s State, _ Command) error {
	switch {
	case !s.UserFound:
		return rental.ErrUserNotFound
	case !s.BookFound:
		return rental.ErrBookNotFound
	case !s.Book.IsAvailable():
		return rental.ErrBookNotAvailable
	case s.BookingFound:
		return rental.ErrBookAlreadyBorrowed
	default:
		return nil
	}
}
