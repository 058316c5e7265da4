package postgresengine

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"

	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/rental/postgresengine/internal/adapters"
)

const (
	operationCreateUser      = "create_user"
	operationFindUserByID    = "find_user_by_id"
	operationFindUserByName  = "find_user_by_name"
	operationFindUserByEmail = "find_user_by_email"
	operationListUsers       = "list_users"
)

func selectUsers() *goqu.SelectDataset {
	return builder().
		From(tableUsers).
		Select(colID, colName, colEmail)
}

func scanUser(rows adapters.DBRows) (rental.User, error) {
	var (
		id    int64
		name  string
		email string
	)

	if err := rows.Scan(&id, &name, &email); err != nil {
		return rental.User{}, errors.Join(rental.ErrScanningDBRowFailed, err)
	}

	user, err := rental.BuildUser(id, name, email)
	if err != nil {
		return rental.User{}, errors.Join(rental.ErrInvalidStoredEntity, err)
	}

	return user, nil
}

// CreateUser inserts a user and returns the assigned id.
// A duplicate email fails with rental.ErrEmailAlreadyExists.
func (s *Store) CreateUser(ctx context.Context, registration rental.UserRegistration) (int64, error) {
	stmt := builder().
		Insert(tableUsers).
		Rows(goqu.Record{
			colName:  registration.Name(),
			colEmail: registration.Email(),
		})

	return insertReturningID(ctx, s, s.db, operationCreateUser, stmt)
}

// FindUserByID returns the user with the given id.
func (s *Store) FindUserByID(ctx context.Context, id int64) (rental.User, bool, error) {
	return findUserByID(ctx, s, s.db, id)
}

// FindUserByName returns the first user with exactly the given name, by id.
func (s *Store) FindUserByName(ctx context.Context, name string) (rental.User, bool, error) {
	stmt := selectUsers().
		Where(goqu.C(colName).Eq(name)).
		Order(goqu.I(colID).Asc())

	return queryOne(ctx, s, s.db, operationFindUserByName, stmt, scanUser)
}

// FindUserByEmail returns the user registered with the given email.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (rental.User, bool, error) {
	stmt := selectUsers().Where(goqu.C(colEmail).Eq(email))

	return queryOne(ctx, s, s.db, operationFindUserByEmail, stmt, scanUser)
}

// ListUsers returns all users ordered by name.
func (s *Store) ListUsers(ctx context.Context) (rental.Users, error) {
	stmt := selectUsers().Order(orderCaseInsensitive(tableUsers, colName)...)

	return queryAll(ctx, s, s.db, operationListUsers, stmt, scanUser)
}

func findUserByID(ctx context.Context, s *Store, db adapters.Querier, id int64) (rental.User, bool, error) {
	stmt := selectUsers().Where(goqu.C(colID).Eq(id))

	return queryOne(ctx, s, db, operationFindUserByID, stmt, scanUser)
}
