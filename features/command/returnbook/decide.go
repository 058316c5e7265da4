package returnbook

import (
	"github.com/AntonStoeckl/library-rental-go/rental"
)

// State is what the handler read, inside the transaction, before deciding.
type State struct {
	UserFound    bool
	BookFound    bool
	BookingFound bool
}

// Decide implements the business rules for returning a book. It is a pure function.
//
// Business Rules:
//
//	GIVEN: a user with UserID and a locked book with BookID
//	WHEN: ReturnBook command is received
//	THEN: the booking (UserID, BookID) is removed and availableCopies grows by one
//	ERROR: ErrUserNotFound if the user does not exist
//	ERROR: ErrBookNotFound if the book does not exist
//	ERROR: ErrBookNotBorrowed if there is no booking for this user and book
func Decide(s State, _ Command) error {
	switch {
	case !s.UserFound:
		return rental.ErrUserNotFound
	case !s.BookFound:
		return rental.ErrBookNotFound
	case !s.BookingFound:
		return rental.ErrBookNotBorrowed
	default:
		return nil
	}
}
