package bootstrap

import (
	"github.com/AntonStoeckl/library-rental-go/features/command/addbook"
	"github.com/AntonStoeckl/library-rental-go/features/command/registerauthor"
	"github.com/AntonStoeckl/library-rental-go/features/command/registeruser"
	"github.com/AntonStoeckl/library-rental-go/features/command/rentbook"
	"github.com/AntonStoeckl/library-rental-go/features/command/returnbook"
	"github.com/AntonStoeckl/library-rental-go/features/query/authors"
	"github.com/AntonStoeckl/library-rental-go/features/query/books"
	"github.com/AntonStoeckl/library-rental-go/features/query/users"
	"github.com/AntonStoeckl/library-rental-go/httpapi"
	"github.com/AntonStoeckl/library-rental-go/shared/shell"
	"github.com/AntonStoeckl/library-rental-go/shared/shell/observable"
)

// Store is everything the handlers need. Both store engines implement it.
type Store interface {
	rentbook.Store
	registeruser.Store
	registerauthor.Store
	addbook.Store
	users.Store
	authors.Store
	books.Store
}

// Observability holds the optional collectors. Nil fields are skipped.
type Observability struct {
	ContextualLogger shell.ContextualLogger
	Metrics          shell.MetricsCollector
	Tracing          shell.TracingCollector
}

// App is the assembled service.
type App struct {
	Commands httpapi.Commands
	Queries  httpapi.Queries
}

// New builds all handlers on store. retryOptions apply to the rent and return transactions.
func New(store Store, obs Observability, retryOptions ...shell.RetryOption) (App, error) {
	var app App
	var err error

	rentRetry := withRetryMetrics(retryOptions, obs, rentbook.Command{}.CommandType())
	if app.Commands.RentBook, err = observe[rentbook.Command](
		rentbook.NewCommandHandler(store, rentbook.WithRetryOptions(rentRetry...)), obs); err != nil {
		return App{}, err
	}

	returnRetry := withRetryMetrics(retryOptions, obs, returnbook.Command{}.CommandType())
	if app.Commands.ReturnBook, err = observe[returnbook.Command](
		returnbook.NewCommandHandler(store, returnbook.WithRetryOptions(returnRetry...)), obs); err != nil {
		return App{}, err
	}

	if app.Commands.RegisterUser, err = observe[registeruser.Command](registeruser.NewCommandHandler(store), obs); err != nil {
		return App{}, err
	}

	if app.Commands.RegisterAuthor, err = observe[registerauthor.Command](registerauthor.NewCommandHandler(store), obs); err != nil {
		return App{}, err
	}

	if app.Commands.AddBook, err = observe[addbook.Command](addbook.NewCommandHandler(store), obs); err != nil {
		return App{}, err
	}

	observer, err := observable.NewQueryObserver(queryOptions(obs)...)
	if err != nil {
		return App{}, err
	}

	app.Queries = httpapi.Queries{
		Users:   users.NewQueryHandler(store, users.WithObserver(observer)),
		Authors: authors.NewQueryHandler(store, authors.WithObserver(observer)),
		Books:   books.NewQueryHandler(store, books.WithObserver(observer)),
	}

	return app, nil
}

func observe[C shell.Command](handler shell.CoreCommandHandler[C], obs Observability) (shell.CoreCommandHandler[C], error) {
	var opts []observable.CommandOption[C]

	if obs.Metrics != nil {
		opts = append(opts, observable.WithCommandMetrics[C](obs.Metrics))
	}

	if obs.Tracing != nil {
		opts = append(opts, observable.WithCommandTracing[C](obs.Tracing))
	}

	if obs.ContextualLogger != nil {
		opts = append(opts, observable.WithCommandContextualLogging[C](obs.ContextualLogger))
	}

	wrapper, err := observable.NewCommandWrapper(handler, opts...)
	if err != nil {
		return nil, err
	}

	return wrapper, nil
}

func queryOptions(obs Observability) []observable.QueryOption {
	var opts []observable.QueryOption

	if obs.Metrics != nil {
		opts = append(opts, observable.WithQueryMetrics(obs.Metrics))
	}

	if obs.Tracing != nil {
		opts = append(opts, observable.WithQueryTracing(obs.Tracing))
	}

	if obs.ContextualLogger != nil {
		opts = append(opts, observable.WithQueryContextualLogging(obs.ContextualLogger))
	}

	return opts
}

func withRetryMetrics(retryOptions []shell.RetryOption, obs Observability, commandType string) []shell.RetryOption {
	opts := append([]shell.RetryOption{}, retryOptions...)

	if obs.Metrics != nil {
		opts = append(opts, shell.WithMetrics(obs.Metrics, commandType))
	}

	return opts
}
