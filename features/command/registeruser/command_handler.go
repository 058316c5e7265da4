package registeruser

import (
	"context"

	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/shared/shell"
)

// Store defines the interface needed by the CommandHandler.
type Store interface {
	CreateUser(ctx context.Context, registration rental.UserRegistration) (int64, error)
}

// CommandHandler registers users.
type CommandHandler struct {
	store        Store
	retryOptions []shell.RetryOption
}

// Option configures a CommandHandler.
type Option func(*CommandHandler)

// WithRetryOptions sets a custom retry configuration for the handler.
func WithRetryOptions(opts ...shell.RetryOption) Option {
	return func(h *CommandHandler) {
		h.retryOptions = opts
	}
}

// NewCommandHandler creates a new CommandHandler with optional configuration.
func NewCommandHandler(store Store, opts ...Option) CommandHandler {
	handler := CommandHandler{
		store: store,
	}

	for _, opt := range opts {
		opt(&handler)
	}

	return handler
}

// Handle stores the user. The assigned id is returned in HandlerResult.AssignedID.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var id int64

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var createErr error
		id, createErr = h.store.CreateUser(retryCtx, command.Registration)

		return createErr
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewRegisteredResult(id, retryMetrics), nil
}
