package returnbook

import (
	"context"

	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/shared/shell"
)

// Store defines the interface needed by the CommandHandler.
type Store interface {
	InTransaction(ctx context.Context, fn rental.TxFunc) error
}

// CommandHandler orchestrates the return workflow with pure business logic and retry.
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

// Handle runs the return workflow in a transaction and retries it when the book lock times out.
func (h CommandHandler) Handle(ctx context.Context, command Command) (shell.HandlerResult, error) {
	retryMetrics, err := shell.RetryWithExponentialBackoff(ctx, func(retryCtx context.Context) error {
		return h.store.InTransaction(retryCtx, func(txCtx context.Context, tx rental.Tx) error {
			return h.executeCommand(txCtx, tx, command)
		})
	}, h.retryOptions...)

	if err != nil {
		return shell.NewErrorResult(retryMetrics), err
	}

	return shell.NewSuccessResult(retryMetrics), nil
}

func (h CommandHandler) executeCommand(ctx context.Context, tx rental.Tx, command Command) error {
	var s State
	var book rental.Book
	var booking rental.Booking
	var err error

	// Query and lock phase, stopping at the first missing prerequisite
	if _, s.UserFound, err = tx.FindUserByID(ctx, command.UserID); err != nil {
		return err
	}

	if s.UserFound {
		if book, s.BookFound, err = tx.FindAndLockBook(ctx, command.BookID); err != nil {
			return err
		}
	}

	if s.BookFound {
		if booking, s.BookingFound, err = tx.FindBooking(ctx, command.UserID, command.BookID); err != nil {
			return err
		}
	}

	// Business logic phase
	if err = Decide(s, command); err != nil {
		return err
	}

	// Write phase
	if err = tx.DeleteBooking(ctx, booking); err != nil {
		return err
	}

	book.Return()

	return tx.UpdateBook(ctx, book)
}
