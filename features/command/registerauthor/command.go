package registerauthor

import (
	"time"

	"github.com/AntonStoeckl/library-rental-go/rental"
)

const (
	commandType = "RegisterAuthor"
)

// Command represents the intent to register a new author.
type Command struct {
	Registration rental.AuthorRegistration
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a Command from validated author data.
// The birthdate must not be after today.
func BuildCommand(name string, birthdate time.Time) (Command, error) {
	registration, err := rental.BuildAuthorRegistration(name, birthdate)
	if err != nil {
		return Command{}, err
	}

	return Command{Registration: registration}, nil
}
