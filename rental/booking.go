package rental

// Booking records that a user currently holds one copy of a book.
// Its existence is the only record of an active loan.
type Booking struct {
	userID int64
	bookID int64
}

// BuildBooking creates a validated Booking.
func BuildBooking(userID int64, bookID int64) (Booking, error) {
	if err := validateID(userID); err != nil {
		return Booking{}, err
	}

	if err := validateID(bookID); err != nil {
		return Booking{}, err
	}

	return Booking{userID: userID, bookID: bookID}, nil
}

func (b Booking) UserID() int64 {
	return b.userID
}

func (b Booking) BookID() int64 {
	return b.bookID
}
