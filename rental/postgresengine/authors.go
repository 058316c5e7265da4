package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/rental/postgresengine/internal/adapters"
)

const (
	operationCreateAuthor     = "create_author"
	operationFindAuthorByID   = "find_author_by_id"
	operationFindAuthorByName = "find_author_by_name"
	operationListAuthors      = "list_authors"

	dateLayout = "2006-01-02"
)

func selectAuthors() *goqu.SelectDataset {
	return builder().
		From(tableAuthors).
		Select(colID, colName, colBirthdate)
}

func scanAuthor(rows adapters.DBRows) (rental.Author, error) {
	var (
		id        int64
		name      string
		birthdate time.Time
	)

	if err := rows.Scan(&id, &name, &birthdate); err != nil {
		return rental.Author{}, errors.Join(rental.ErrScanningDBRowFailed, err)
	}

	author, err := rental.BuildAuthor(id, name, birthdate)
	if err != nil {
		return rental.Author{}, errors.Join(rental.ErrInvalidStoredEntity, err)
	}

	return author, nil
}

// CreateAuthor inserts an author and returns the assigned id.
func (s *Store) CreateAuthor(ctx context.Context, registration rental.AuthorRegistration) (int64, error) {
	stmt := builder().
		Insert(tableAuthors).
		Rows(goqu.Record{
			colName:      registration.Name(),
			colBirthdate: goqu.L("?::date", registration.Birthdate().Format(dateLayout)),
		})

	return insertReturningID(ctx, s, s.db, operationCreateAuthor, stmt)
}

func (s *Store) FindAuthorByID(ctx context.Context, id int64) (rental.Author, bool, error) {
	stmt := selectAuthors().Where(goqu.C(colID).Eq(id))

	return queryOne(ctx, s, s.db, operationFindAuthorByID, stmt, scanAuthor)
}

// FindAuthorByName returns the first author with exactly the given name, by id.
func (s *Store) FindAuthorByName(ctx context.Context, name string) (rental.Author, bool, error) {
	stmt := selectAuthors().
		Where(goqu.C(colName).Eq(name)).
		Order(goqu.I(colID).Asc())

	return queryOne(ctx, s, s.db, operationFindAuthorByName, stmt, scanAuthor)
}

func (s *Store) ListAuthors(ctx context.Context) (rental.Authors, error) {
	stmt := selectAuthors().Order(orderCaseInsensitive(tableAuthors, colName)...)

	return queryAll(ctx, s, s.db, operationListAuthors, stmt, scanAuthor)
}
