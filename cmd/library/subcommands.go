package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-rental-go/features/command/rentbook"
	"github.com/AntonStoeckl/library-rental-go/features/command/returnbook"
	"github.com/AntonStoeckl/library-rental-go/httpapi"
	"github.com/AntonStoeckl/library-rental-go/rental"
)

const shutdownTimeout = 10 * time.Second

var errConflictingFilters = errors.New("use at most one of -year, -author and -available")

type bookView struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	PublicationYear int    `json:"publication_year"`
	AuthorID        int64  `json:"author_id"`
	AvailableCopies int    `json:"available_copies"`
}

type userView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type outcomeView struct {
	Outcome  string `json:"outcome"`
	UserID   int64  `json:"user_id"`
	BookID   int64  `json:"book_id"`
	Attempts int    `json:"attempts"`
}

func runMigrate(ctx context.Context, env environment, _ []string) error {
	if err := env.store.CreateSchema(ctx); err != nil {
		return err
	}

	env.logger.InfoContext(ctx, "schema is up to date")

	return nil
}

func runServe(ctx context.Context, env environment, _ []string) error {
	server, err := httpapi.NewServer(env.app.Commands, env.app.Queries, httpapi.WithLogger(env.logger))
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(env.cfg.HTTPAddr)
	}()

	env.logger.InfoContext(ctx, "http server listening", "addr", env.cfg.HTTPAddr)

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func runRent(ctx context.Context, env environment, args []string) error {
	userID, bookID, err := parseRentalFlags("rent", args)
	if err != nil {
		return err
	}

	command, err := rentbook.BuildCommand(userID, bookID)
	if err != nil {
		return err
	}

	result, err := env.app.Commands.RentBook.Handle(ctx, command)
	if err != nil {
		return err
	}

	return writeJSON(env.out, outcomeView{Outcome: "rented", UserID: userID, BookID: bookID, Attempts: result.RetryAttempts})
}

func runReturn(ctx context.Context, env environment, args []string) error {
	userID, bookID, err := parseRentalFlags("return", args)
	if err != nil {
		return err
	}

	command, err := returnbook.BuildCommand(userID, bookID)
	if err != nil {
		return err
	}

	result, err := env.app.Commands.ReturnBook.Handle(ctx, command)
	if err != nil {
		return err
	}

	return writeJSON(env.out, outcomeView{Outcome: "returned", UserID: userID, BookID: bookID, Attempts: result.RetryAttempts})
}

func runBooks(ctx context.Context, env environment, args []string) error {
	fs := flag.NewFlagSet("books", flag.ContinueOnError)
	year := fs.Int("year", 0, "only books published in this year")
	author := fs.String("author", "", "only books of authors with exactly this name")
	available := fs.String("available", "", "true for books with copies left, false for books without")

	if err := fs.Parse(args); err != nil {
		return err
	}

	filtersSet := 0
	fs.Visit(func(*flag.Flag) { filtersSet++ })

	if filtersSet > 1 {
		return errConflictingFilters
	}

	queries := env.app.Queries.Books

	var result rental.Books
	var err error

	switch {
	case *year != 0:
		result, err = queries.ByYear(ctx, *year)
	case *author != "":
		result, err = queries.ByAuthorName(ctx, *author)
	case *available != "":
		result, err = queries.ByAvailability(ctx, *available == "true")
	default:
		result, err = queries.ListAll(ctx)
	}

	if err != nil {
		return err
	}

	return writeJSON(env.out, toBookViews(result))
}

func runUsers(ctx context.Context, env environment, args []string) error {
	fs := flag.NewFlagSet("users", flag.ContinueOnError)
	id := fs.Int64("id", 0, "show the books this user currently has")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *id != 0 {
		result, err := env.app.Queries.Users.BooksOfUser(ctx, *id)
		if err != nil {
			return err
		}

		return writeJSON(env.out, toBookViews(result))
	}

	result, err := env.app.Queries.Users.ListAll(ctx)
	if err != nil {
		return err
	}

	views := make([]userView, 0, len(result))
	for _, u := range result {
		views = append(views, userView{ID: u.ID(), Name: u.Name(), Email: u.Email()})
	}

	return writeJSON(env.out, views)
}

func parseRentalFlags(name string, args []string) (int64, int64, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	userID := fs.Int64("user", 0, "id of the user")
	bookID := fs.Int64("book", 0, "id of the book")

	if err := fs.Parse(args); err != nil {
		return 0, 0, err
	}

	return *userID, *bookID, nil
}

func toBookViews(books rental.Books) []bookView {
	views := make([]bookView, 0, len(books))
	for _, b := range books {
		views = append(views, bookView{
			ID:              b.ID(),
			Title:           b.Title(),
			PublicationYear: b.PublicationYear(),
			AuthorID:        b.AuthorID(),
			AvailableCopies: b.AvailableCopies(),
		})
	}

	return views
}

func writeJSON(out io.Writer, v any) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(out)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
