package users

import (
	"context"

	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/shared/shell/observable"
)

const (
	queryTypeListAll     = "ListUsers"
	queryTypeFindByID    = "FindUserByID"
	queryTypeFindByName  = "FindUserByName"
	queryTypeFindByEmail = "FindUserByEmail"
	queryTypeBooksOfUser = "BooksOfUser"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	ListUsers(ctx context.Context) (rental.Users, error)
	FindUserByID(ctx context.Context, id int64) (rental.User, bool, error)
	FindUserByName(ctx context.Context, name string) (rental.User, bool, error)
	FindUserByEmail(ctx context.Context, email string) (rental.User, bool, error)
	ListBooksByUserID(ctx context.Context, userID int64) (rental.Books, error)
}

// QueryHandler answers user queries.
type QueryHandler struct {
	store    Store
	observer *observable.QueryObserver
}

// Option defines a functional option for configuring QueryHandler.
type Option func(*QueryHandler)

// WithObserver instruments every query with the given observer.
func WithObserver(observer *observable.QueryObserver) Option {
	return func(h *QueryHandler) {
		h.observer = observer
	}
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(store Store, opts ...Option) QueryHandler {
	h := QueryHandler{
		store: store,
	}

	for _, opt := range opts {
		opt(&h)
	}

	return h
}

// ListAll returns all users ordered by name.
func (h QueryHandler) ListAll(ctx context.Context) (rental.Users, error) {
	ctx = rental.WithEventualConsistency(ctx)

	return observable.ObserveQuery(ctx, h.observer, queryTypeListAll, h.store.ListUsers)
}

func (h QueryHandler) FindByID(ctx context.Context, id int64) (rental.User, bool, error) {
	ctx = rental.WithEventualConsistency(ctx)

	return observable.ObserveLookup(ctx, h.observer, queryTypeFindByID, func(ctx context.Context) (rental.User, bool, error) {
		return h.store.FindUserByID(ctx, id)
	})
}

// FindByName returns the user with the lowest id among those with exactly this name.
func (h QueryHandler) FindByName(ctx context.Context, name string) (rental.User, bool, error) {
	ctx = rental.WithEventualConsistency(ctx)

	return observable.ObserveLookup(ctx, h.observer, queryTypeFindByName, func(ctx context.Context) (rental.User, bool, error) {
		return h.store.FindUserByName(ctx, name)
	})
}

func (h QueryHandler) FindByEmail(ctx context.Context, email string) (rental.User, bool, error) {
	ctx = rental.WithEventualConsistency(ctx)

	return observable.ObserveLookup(ctx, h.observer, queryTypeFindByEmail, func(ctx context.Context) (rental.User, bool, error) {
		return h.store.FindUserByEmail(ctx, email)
	})
}

// BooksOfUser returns the books the user currently has, ordered by title.
// An unknown user fails with rental.ErrUserNotFound.
func (h QueryHandler) BooksOfUser(ctx context.Context, userID int64) (rental.Books, error) {
	ctx = rental.WithEventualConsistency(ctx)

	return observable.ObserveQuery(ctx, h.observer, queryTypeBooksOfUser, func(ctx context.Context) (rental.Books, error) {
		_, found, err := h.store.FindUserByID(ctx, userID)
		if err != nil {
			return nil, err
		}

		if !found {
			return nil, rental.ErrUserNotFound
		}

		return h.store.ListBooksByUserID(ctx, userID)
	})
}
