package rentbook

import (
	"context"

	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/shared/shell"
)

// Store defines the interface needed by the CommandHandler.
type Store interface {
	InTransaction(ctx context.Context, fn rental.TxFunc) error
}

// CommandHandler orchestrates the rent workflow with pure business logic and retry.
// External wrappers handle all observability concerns.
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

// Handle runs the rent workflow in a transaction and retries it when the book lock times out.
// Any error rolls the transaction back, so a failed rent leaves no trace.
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

// executeCommand contains the transactional part that can be retried.
func (h CommandHandler) executeCommand(ctx context.Context, tx rental.Tx, command Command) error {
	s, err := h.readState(ctx, tx, command)
	if err != nil {
		return err
	}

	// Business logic phase - delegate to pure core function
	if err = Decide(s, command); err != nil {
		return err
	}

	// Write phase
	booking, err := rental.BuildBooking(command.UserID, command.BookID)
	if err != nil {
		return err
	}

	if err = tx.CreateBooking(ctx, booking); err != nil {
		return err
	}

	book := s.Book
	if err = book.Rent(); err != nil {
		return err
	}

	return tx.UpdateBook(ctx, book)
}

// readState reads the user, locks the book and reads the booking, stopping at the first
// missing prerequisite. A missing user therefore never takes the book lock.
func (h CommandHandler) readState(ctx context.Context, tx rental.Tx, command Command) (State, error) {
	var s State
	var err error

	if _, s.UserFound, err = tx.FindUserByID(ctx, command.UserID); err != nil || !s.UserFound {
		return s, err
	}

	if s.Book, s.BookFound, err = tx.FindAndLockBook(ctx, command.BookID); err != nil || !s.BookFound {
		return s, err
	}

	if !s.Book.IsAvailable() {
		return s, nil
	}

	_, s.BookingFound, err = tx.FindBooking(ctx, command.UserID, command.BookID)

	return s, err
}
