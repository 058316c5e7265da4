package addbook

import (
	"context"

	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/shared/shell"
)

// Store defines the interface needed by the CommandHandler.
type Store interface {
	CreateBook(ctx context.Context, registration rental.BookRegistration) (int64, error)
}

// CommandHandler adds books to the catalog.
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

// Handle stores the book. The assigned id is returned in HandlerResult.AssignedID.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	var id int64

	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		var createErr error
		id, createErr = h.store.CreateBook(retryCtx, command.Registration)

		return createErr
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewRegisteredResult(id, retryMetrics), nil
}
