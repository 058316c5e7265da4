package helper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rental-go/rental"
)

// Registrar is the registration surface both store engines provide.
type Registrar interface {
	CreateUser(ctx context.Context, registration rental.UserRegistration) (int64, error)
	CreateAuthor(ctx context.Context, registration rental.AuthorRegistration) (int64, error)
	CreateBook(ctx context.Context, registration rental.BookRegistration) (int64, error)
}

// FixtureBirthdate is the birthdate given to fixture authors.
var FixtureBirthdate = time.Date(1952, time.March, 11, 0, 0, 0, 0, time.UTC)

// FixturePublicationYear is the publication year given to fixture books.
const FixturePublicationYear = 1979

// GivenUniqueEmail returns an email address no other test uses.
func GivenUniqueEmail(t testing.TB) string {
	t.Helper()

	return "reader-" + uuid.NewString() + "@library.test"
}

func GivenUser(t testing.TB, ctx context.Context, store Registrar, name string) rental.User {
	t.Helper()

	registration, err := rental.BuildUserRegistration(name, GivenUniqueEmail(t))
	require.NoError(t, err, "error in arranging test data")

	id, err := store.CreateUser(ctx, registration)
	require.NoError(t, err, "error in arranging test data")

	user, err := rental.BuildUser(id, registration.Name(), registration.Email())
	require.NoError(t, err, "error in arranging test data")

	return user
}

func GivenAuthor(t testing.TB, ctx context.Context, store Registrar, name string) rental.Author {
	t.Helper()

	registration, err := rental.BuildAuthorRegistration(name, FixtureBirthdate)
	require.NoError(t, err, "error in arranging test data")

	id, err := store.CreateAuthor(ctx, registration)
	require.NoError(t, err, "error in arranging test data")

	author, err := rental.BuildAuthor(id, registration.Name(), registration.Birthdate())
	require.NoError(t, err, "error in arranging test data")

	return author
}

func GivenBook(t testing.TB, ctx context.Context, store Registrar, title string, authorID int64, copies int) rental.Book {
	t.Helper()

	return GivenBookFromYear(t, ctx, store, title, FixturePublicationYear, authorID, copies)
}

func GivenBookFromYear(
	t testing.TB,
	ctx context.Context,
	store Registrar,
	title string,
	year int,
	authorID int64,
	copies int,
) rental.Book {
	t.Helper()

	registration, err := rental.BuildBookRegistration(title, year, authorID, copies)
	require.NoError(t, err, "error in arranging test data")

	id, err := store.CreateBook(ctx, registration)
	require.NoError(t, err, "error in arranging test data")

	book, err := rental.BuildBook(id, title, year, authorID, copies)
	require.NoError(t, err, "error in arranging test data")

	return book
}

// IDsOfBooks returns the ids in listing order.
func IDsOfBooks(books rental.Books) []int64 {
	ids := make([]int64, 0, len(books))
	for _, book := range books {
		ids = append(ids, book.ID())
	}

	return ids
}

// TitlesOfBooks returns the titles in listing order.
func TitlesOfBooks(books rental.Books) []string {
	titles := make([]string, 0, len(books))
	for _, book := range books {
		titles = append(titles, book.Title())
	}

	return titles
}
