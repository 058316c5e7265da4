package books

import (
	"context"

	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/shared/shell/observable"
)

const (
	queryTypeListAll        = "ListBooks"
	queryTypeFindByID       = "FindBookByID"
	queryTypeFindByTitle    = "FindBookByTitle"
	queryTypeByYear         = "BooksByYear"
	queryTypeByAuthorName   = "BooksByAuthorName"
	queryTypeByAvailability = "BooksByAvailability"
)

// Store defines the interface needed by the QueryHandler.
type Store interface {
	ListBooks(ctx context.Context) (rental.Books, error)
	FindBookByID(ctx context.Context, id int64) (rental.Book, bool, error)
	FindBookByTitle(ctx context.Context, title string) (rental.Book, bool, error)
	ListBooksByYear(ctx context.Context, year int) (rental.Books, error)
	ListBooksByAuthorName(ctx context.Context, authorName string) (rental.Books, error)
	ListBooksByAvailability(ctx context.Context, available bool) (rental.Books, error)
}

// QueryHandler answers catalog queries with eventual consistency.
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

// ListAll returns the whole catalog ordered by title.
func (h QueryHandler) ListAll(ctx context.Context) (rental.Books, error) {
	ctx = rental.WithEventualConsistency(ctx)

	return observable.ObserveQuery(ctx, h.observer, queryTypeListAll, h.store.ListBooks)
}

func (h QueryHandler) FindByID(ctx context.Context, id int64) (rental.Book, bool, error) {
	ctx = rental.WithEventualConsistency(ctx)

	return observable.ObserveLookup(ctx, h.observer, queryTypeFindByID, func(ctx context.Context) (rental.Book, bool, error) {
		return h.store.FindBookByID(ctx, id)
	})
}

func (h QueryHandler) FindByTitle(ctx context.Context, title string) (rental.Book, bool, error) {
	ctx = rental.WithEventualConsistency(ctx)

	return observable.ObserveLookup(ctx, h.observer, queryTypeFindByTitle, func(ctx context.Context) (rental.Book, bool, error) {
		return h.store.FindBookByTitle(ctx, title)
	})
}

func (h QueryHandler) ByYear(ctx context.Context, year int) (rental.Books, error) {
	ctx = rental.WithEventualConsistency(ctx)

	return observable.ObserveQuery(ctx, h.observer, queryTypeByYear, func(ctx context.Context) (rental.Books, error) {
		return h.store.ListBooksByYear(ctx, year)
	})
}

// ByAuthorName returns the books of every author with exactly this name. No match is an empty list.
func (h QueryHandler) ByAuthorName(ctx context.Context, authorName string) (rental.Books, error) {
	ctx = rental.WithEventualConsistency(ctx)

	return observable.ObserveQuery(ctx, h.observer, queryTypeByAuthorName, func(ctx context.Context) (rental.Books, error) {
		return h.store.ListBooksByAuthorName(ctx, authorName)
	})
}

// ByAvailability returns the books that have copies left (available) or none (not available).
func (h QueryHandler) ByAvailability(ctx context.Context, available bool) (rental.Books, error) {
	ctx = rental.WithEventualConsistency(ctx)

	return observable.ObserveQuery(ctx, h.observer, queryTypeByAvailability, func(ctx context.Context) (rental.Books, error) {
		return h.store.ListBooksByAvailability(ctx, available)
	})
}
