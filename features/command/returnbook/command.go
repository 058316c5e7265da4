package returnbook

import (
	"github.com/AntonStoeckl/library-rental-go/rental"
)

const (
	commandType = "ReturnBook"
)

// Command represents the intent of a user to give a borrowed book back.
type Command struct {
	UserID int64
	BookID int64
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a Command after checking that both ids are positive.
func BuildCommand(userID int64, bookID int64) (Command, error) {
	if _, err := rental.BuildBooking(userID, bookID); err != nil {
		return Command{}, err
	}

	return Command{UserID: userID, BookID: bookID}, nil
}
