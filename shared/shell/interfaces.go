package shell

import "context"

// Command represents the contract for all command types of the rental service.
// The CommandType method enables polymorphic handling and observability instrumentation.
type Command interface {
	CommandType() string
}

// CoreCommandHandler defines the contract for components that process commands with business logic.
// Handlers run the complete workflow (read and lock, decide, write) inside one store transaction.
// Implementations should focus on business logic without observability concerns.
// This interface is designed to be wrapped with observability decorators.
type CoreCommandHandler[C Command] interface {
	Handle(ctx context.Context, command C) (HandlerResult, error)
}
