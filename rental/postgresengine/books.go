package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/rental/postgresengine/internal/adapters"
)

const (
	operationCreateBook              = "create_book"
	operationFindBookByID            = "find_book_by_id"
	operationFindAndLockBook         = "find_and_lock_book"
	operationFindBookByTitle         = "find_book_by_title"
	operationUpdateBook              = "update_book"
	operationListBooks               = "list_books"
	operationListBooksByYear         = "list_books_by_year"
	operationListBooksByAuthorID     = "list_books_by_author_id"
	operationListBooksByAuthorName   = "list_books_by_author_name"
	operationListBooksByAvailability = "list_books_by_availability"
	operationListBooksByUserID       = "list_books_by_user_id"
)

func bookCol(column string) exp.IdentifierExpression {
	return goqu.T(tableBooks).Col(column)
}

func selectBooks() *goqu.SelectDataset {
	return builder().
		From(tableBooks).
		Select(
			bookCol(colID),
			bookCol(colTitle),
			bookCol(colPublicationYear),
			bookCol(colAuthorID),
			bookCol(colAvailableCopies),
		)
}

func scanBook(rows adapters.DBRows) (rental.Book, error) {
	var (
		id              int64
		title           string
		publicationYear int
		authorID        int64
		availableCopies int
	)

	if err := rows.Scan(&id, &title, &publicationYear, &authorID, &availableCopies); err != nil {
		return rental.Book{}, errors.Join(rental.ErrScanningDBRowFailed, err)
	}

	book, err := rental.BuildBook(id, title, publicationYear, authorID, availableCopies)
	if err != nil {
		return rental.Book{}, errors.Join(rental.ErrInvalidStoredEntity, err)
	}

	return book, nil
}

// CreateBook inserts a book and returns the assigned id.
// An unknown author fails with rental.ErrAuthorNotFound.
func (s *Store) CreateBook(ctx context.Context, registration rental.BookRegistration) (int64, error) {
	stmt := builder().
		Insert(tableBooks).
		Rows(goqu.Record{
			colTitle:           registration.Title(),
			colPublicationYear: registration.PublicationYear(),
			colAuthorID:        registration.AuthorID(),
			colAvailableCopies: registration.AvailableCopies(),
		})

	return insertReturningID(ctx, s, s.db, operationCreateBook, stmt)
}

// FindBookByID returns the book without locking it.
func (s *Store) FindBookByID(ctx context.Context, id int64) (rental.Book, bool, error) {
	stmt := selectBooks().Where(bookCol(colID).Eq(id))

	return queryOne(ctx, s, s.db, operationFindBookByID, stmt, scanBook)
}

// FindBookByTitle returns the first book with exactly the given title, by id.
func (s *Store) FindBookByTitle(ctx context.Context, title string) (rental.Book, bool, error) {
	stmt := selectBooks().
		Where(bookCol(colTitle).Eq(title)).
		Order(bookCol(colID).Asc())

	return queryOne(ctx, s, s.db, operationFindBookByTitle, stmt, scanBook)
}

// ListBooks returns all books ordered by title.
func (s *Store) ListBooks(ctx context.Context) (rental.Books, error) {
	return s.listBooks(ctx, operationListBooks, selectBooks())
}

// ListBooksByYear returns the books published in year.
func (s *Store) ListBooksByYear(ctx context.Context, year int) (rental.Books, error) {
	stmt := selectBooks().Where(bookCol(colPublicationYear).Eq(year))

	return s.listBooks(ctx, operationListBooksByYear, stmt)
}

// ListBooksByAuthorID returns the books written by the author with the given id.
func (s *Store) ListBooksByAuthorID(ctx context.Context, authorID int64) (rental.Books, error) {
	stmt := selectBooks().Where(bookCol(colAuthorID).Eq(authorID))

	return s.listBooks(ctx, operationListBooksByAuthorID, stmt)
}

// ListBooksByAuthorName returns the books of every author whose name matches exactly.
func (s *Store) ListBooksByAuthorName(ctx context.Context, authorName string) (rental.Books, error) {
	stmt := selectBooks().
		InnerJoin(
			goqu.T(tableAuthors),
			goqu.On(goqu.T(tableAuthors).Col(colID).Eq(bookCol(colAuthorID))),
		).
		Where(goqu.T(tableAuthors).Col(colName).Eq(authorName))

	return s.listBooks(ctx, operationListBooksByAuthorName, stmt)
}

// ListBooksByAvailability returns the books with at least one copy left, or the ones with none.
func (s *Store) ListBooksByAvailability(ctx context.Context, available bool) (rental.Books, error) {
	condition := bookCol(colAvailableCopies).Lte(0)
	if available {
		condition = bookCol(colAvailableCopies).Gt(0)
	}

	return s.listBooks(ctx, operationListBooksByAvailability, selectBooks().Where(condition))
}

// ListBooksByUserID returns the books the user currently has booked.
func (s *Store) ListBooksByUserID(ctx context.Context, userID int64) (rental.Books, error) {
	stmt := selectBooks().
		InnerJoin(
			goqu.T(tableBookings),
			goqu.On(goqu.T(tableBookings).Col(colBookID).Eq(bookCol(colID))),
		).
		Where(goqu.T(tableBookings).Col(colUserID).Eq(userID))

	return s.listBooks(ctx, operationListBooksByUserID, stmt)
}

func (s *Store) listBooks(ctx context.Context, operation string, stmt *goqu.SelectDataset) (rental.Books, error) {
	return queryAll(ctx, s, s.db, operation, stmt.Order(orderCaseInsensitive(tableBooks, colTitle)...), scanBook)
}

func findAndLockBook(ctx context.Context, s *Store, db adapters.Querier, id int64) (rental.Book, bool, error) {
	stmt := selectBooks().
		Where(bookCol(colID).Eq(id)).
		ForUpdate(exp.Wait)

	return queryOne(ctx, s, db, operationFindAndLockBook, stmt, scanBook)
}

func updateBook(ctx context.Context, s *Store, db adapters.Querier, book rental.Book) error {
	stmt := builder().
		Update(tableBooks).
		Set(goqu.Record{colAvailableCopies: book.AvailableCopies()}).
		Where(goqu.C(colID).Eq(book.ID())).
		Prepared(true)

	return execute(ctx, s, db, operationUpdateBook, stmt)
}
