package addbook

import (
	"github.com/AntonStoeckl/library-rental-go/rental"
)

const (
	commandType = "AddBook"
)

// Command represents the intent to add a book with a number of copies to the catalog.
type Command struct {
	Registration rental.BookRegistration
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a Command from validated book data.
func BuildCommand(title string, publicationYear int, authorID int64, availableCopies int) (Command, error) {
	registration, err := rental.BuildBookRegistration(title, publicationYear, authorID, availableCopies)
	if err != nil {
		return Command{}, err
	}

	return Command{Registration: registration}, nil
}
