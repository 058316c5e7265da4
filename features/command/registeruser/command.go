package registeruser

import (
	"github.com/AntonStoeckl/library-rental-go/rental"
)

const (
	commandType = "RegisterUser"
)

// Command represents the intent to register a new user.
type Command struct {
	Registration rental.UserRegistration
}

// CommandType returns the type identifier for this command, used for observability and routing.
func (c Command) CommandType() string {
	return commandType
}

// BuildCommand creates a Command from validated user data.
func BuildCommand(name string, email string) (Command, error) {
	registration, err := rental.BuildUserRegistration(name, email)
	if err != nil {
		return Command{}, err
	}

	return Command{Registration: registration}, nil
}
