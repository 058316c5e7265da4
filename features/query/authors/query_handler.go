package authors

import (
	"context"

	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/shared/shell/observable"
)

const (
	queryTypeListAll       = "ListAuthors"
	queryTypeFindByID      = "FindAuthorByID"
	queryTypeFindByName    = "FindAuthorByName"
	queryTypeBooksOfAuthor = "BooksOfAuthor"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	ListAuthors(ctx context.Context) (rental.Authors, error)
	FindAuthorByID(ctx context.Context, id int64) (rental.Author, bool, error)
	FindAuthorByName(ctx context.Context, name string) (rental.Author, bool, error)
	ListBooksByAuthorID(ctx context.Context, authorID int64) (rental.Books, error)
}

// QueryHandler answers author queries with eventual consistency.
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

// ListAll returns all authors ordered by name.
func (h QueryHandler) ListAll(ctx context.Context) (rental.Authors, error) {
	ctx = rental.WithEventualConsistency(ctx)

	return observable.ObserveQuery(ctx, h.observer, queryTypeListAll, h.store.ListAuthors)
}

func (h QueryHandler) FindByID(ctx context.Context, id int64) (rental.Author, bool, error) {
	ctx = rental.WithEventualConsistency(ctx)

	return observable.ObserveLookup(ctx, h.observer, queryTypeFindByID, func(ctx context.Context) (rental.Author, bool, error) {
		return h.store.FindAuthorByID(ctx, id)
	})
}

func (h QueryHandler) FindByName(ctx context.Context, name string) (rental.Author, bool, error) {
	ctx = rental.WithEventualConsistency(ctx)

	return observable.ObserveLookup(ctx, h.observer, queryTypeFindByName, func(ctx context.Context) (rental.Author, bool, error) {
		return h.store.FindAuthorByName(ctx, name)
	})
}

// BooksOfAuthor returns the books written by the author, ordered by title.
// An unknown author fails with rental.ErrAuthorNotFound.
func (h QueryHandler) BooksOfAuthor(ctx context.Context, authorID int64) (rental.Books, error) {
	ctx = rental.WithEventualConsistency(ctx)

	return observable.ObserveQuery(ctx, h.observer, queryTypeBooksOfAuthor, func(ctx context.Context) (rental.Books, error) {
		_, found, err := h.store.FindAuthorByID(ctx, authorID)
		if err != nil {
			return nil, err
		}

		if !found {
			return nil, rental.ErrAuthorNotFound
		}

		return h.store.ListBooksByAuthorID(ctx, authorID)
	})
}
