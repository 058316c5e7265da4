package postgresengine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/rental/postgresengine/internal/adapters"
)

type emptyRows struct{}

func (emptyRows) Next() bool        { return false }
func (emptyRows) Scan(...any) error { return nil }
func (emptyRows) Err() error        { return nil }
func (emptyRows) Close() error      { return nil }

type fakeResult struct{}

func (fakeResult) RowsAffected() (int64, error) { return 1, nil }

// fakeQuerier records statements and fails them with queryErr when set.
type fakeQuerier struct {
	mu         sync.Mutex
	statements []string
	queryErr   error
}

func (q *fakeQuerier) Query(_ context.Context, query string, _ ...any) (adapters.DBRows, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.statements = append(q.statements, query)

	if q.queryErr != nil {
		return nil, q.queryErr
	}

	return emptyRows{}, nil
}

func (q *fakeQuerier) Exec(_ context.Context, query string, _ ...any) (adapters.DBResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.statements = append(q.statements, query)

	return fakeResult{}, nil
}

type fakeTx struct {
	fakeQuerier
	commitErr  error
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Commit(context.Context) error {
	if tx.commitErr != nil {
		return tx.commitErr
	}

	tx.committed = true

	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	tx.rolledBack = true
	return nil
}

type fakeDB struct {
	fakeQuerier
	tx       *fakeTx
	beginErr error
}

func (db *fakeDB) BeginTx(context.Context) (adapters.DBTx, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}

	return db.tx, nil
}

func givenStoreOnFakeDB(t *testing.T, options ...Option) (*Store, *fakeDB) {
	db := &fakeDB{tx: &fakeTx{}}
	store, err := newStore(db, options...)
	require.NoError(t, err)

	return store, db
}

func Test_InTransaction_SetsLockTimeoutAndCommits(t *testing.T) {
	// setup
	store, db := givenStoreOnFakeDB(t, WithLockTimeout(250*time.Millisecond))

	// act
	err := store.InTransaction(context.Background(), func(context.Context, rental.Tx) error { return nil })

	// assert
	require.NoError(t, err)
	require.NotEmpty(t, db.tx.statements)
	assert.Equal(t, "SET LOCAL lock_timeout = '250ms'", db.tx.statements[0])
	assert.True(t, db.tx.committed)
	assert.False(t, db.tx.rolledBack)
}

func Test_InTransaction_RollsBackAndPassesErrorThrough(t *testing.T) {
	// setup
	store, db := givenStoreOnFakeDB(t)

	// act
	err := store.InTransaction(context.Background(), func(context.Context, rental.Tx) error {
		return rental.ErrBookAlreadyBorrowed
	})

	// assert
	assert.Equal(t, rental.ErrBookAlreadyBorrowed, err)
	assert.False(t, db.tx.committed)
	assert.True(t, db.tx.rolledBack)
}

func Test_InTransaction_RollsBackOnPanic(t *testing.T) {
	// setup
	store, db := givenStoreOnFakeDB(t)

	// act
	assert.Panics(t, func() {
		_ = store.InTransaction(context.Background(), func(context.Context, rental.Tx) error {
			panic("boom")
		})
	})

	// assert
	assert.True(t, db.tx.rolledBack)
}

func Test_InTransaction_BeginFailure(t *testing.T) {
	// setup
	store, db := givenStoreOnFakeDB(t)
	db.beginErr = errors.New("too many connections")
	called := false

	// act
	err := store.InTransaction(context.Background(), func(context.Context, rental.Tx) error {
		called = true
		return nil
	})

	// assert
	assert.ErrorIs(t, err, rental.ErrTransactionFailed)
	assert.False(t, called)
}

func Test_InTransaction_CommitFailureIsMapped(t *testing.T) {
	// setup
	store, db := givenStoreOnFakeDB(t)
	db.tx.commitErr = &pgconn.PgError{Code: pgerrcode.LockNotAvailable}

	// act
	err := store.InTransaction(context.Background(), func(context.Context, rental.Tx) error { return nil })

	// assert
	assert.ErrorIs(t, err, rental.ErrTransactionFailed)
	assert.ErrorIs(t, err, rental.ErrLockTimeout)
	assert.True(t, db.tx.rolledBack)
}

func Test_FindAndLockBook_SelectsForUpdate(t *testing.T) {
	// setup
	store, db := givenStoreOnFakeDB(t)

	// act
	var found bool
	err := store.InTransaction(context.Background(), func(ctx context.Context, tx rental.Tx) error {
		var findErr error
		_, found, findErr = tx.FindAndLockBook(ctx, 42)
		return findErr
	})

	// assert
	require.NoError(t, err)
	assert.False(t, found)
	require.Len(t, db.tx.statements, 2)
	lockQuery := db.tx.statements[1]
	assert.Contains(t, lockQuery, "FOR UPDATE")
	assert.Contains(t, lockQuery, `"books"."id" = $1`)
	assert.NotContains(t, lockQuery, "NOWAIT")
	assert.Empty(t, db.statements, "locking reads must not leave the transaction")
}

func Test_CaseInsensitiveListings_OrderByLoweredColumnThenID(t *testing.T) {
	// setup
	store, db := givenStoreOnFakeDB(t)

	// act
	_, err := store.ListBooks(context.Background())

	// assert
	require.NoError(t, err)
	require.Len(t, db.statements, 1)
	assert.Contains(t, db.statements[0], `ORDER BY LOWER("books"."title") ASC, "books"."id" ASC`)
}

func Test_ListBooksByAuthorName_JoinsAuthors(t *testing.T) {
	// setup
	store, db := givenStoreOnFakeDB(t)

	// act
	_, err := store.ListBooksByAuthorName(context.Background(), "Ada")

	// assert
	require.NoError(t, err)
	require.Len(t, db.statements, 1)
	assert.Contains(t, db.statements[0], `INNER JOIN "authors"`)
}

func Test_CreateUser_DuplicateEmailConstraintIsMapped(t *testing.T) {
	// setup
	store, db := givenStoreOnFakeDB(t)
	db.queryErr = &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraintUsersEmail}
	registration, err := rental.BuildUserRegistration("Ada", "ada@example.org")
	require.NoError(t, err)

	// act
	_, err = store.CreateUser(context.Background(), registration)

	// assert
	assert.ErrorIs(t, err, rental.ErrEmailAlreadyExists)
	assert.NotErrorIs(t, err, rental.ErrWritingFailed)
}

func Test_QueryFailure_IsWrappedWithSentinel(t *testing.T) {
	// setup
	store, db := givenStoreOnFakeDB(t)
	connErr := errors.New("connection reset by peer")
	db.queryErr = connErr

	// act
	_, err := store.ListUsers(context.Background())

	// assert
	assert.ErrorIs(t, err, rental.ErrQueryingFailed)
	assert.ErrorIs(t, err, connErr)
}

func Test_MapDBError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected error
	}{
		{
			name:     "pgx lock not available",
			err:      &pgconn.PgError{Code: pgerrcode.LockNotAvailable},
			expected: rental.ErrLockTimeout,
		},
		{
			name:     "lib/pq lock not available",
			err:      &pq.Error{Code: pgerrcode.LockNotAvailable},
			expected: rental.ErrLockTimeout,
		},
		{
			name:     "pgx unique violation on email",
			err:      &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: constraintUsersEmail},
			expected: rental.ErrEmailAlreadyExists,
		},
		{
			name:     "lib/pq unique violation on email",
			err:      &pq.Error{Code: pgerrcode.UniqueViolation, Constraint: constraintUsersEmail},
			expected: rental.ErrEmailAlreadyExists,
		},
		{
			name:     "foreign key violation on book author",
			err:      &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: constraintBooksAuthor},
			expected: rental.ErrAuthorNotFound,
		},
		{
			name:     "wrapped driver error",
			err:      fmt.Errorf("exec: %w", &pgconn.PgError{Code: pgerrcode.LockNotAvailable}),
			expected: rental.ErrLockTimeout,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			mapped := mapDBError(tc.err)

			// assert
			assert.ErrorIs(t, mapped, tc.expected)
			assert.ErrorIs(t, mapped, tc.err, "driver error stays in the chain")
		})
	}
}

func Test_MapDBError_LeavesOtherErrorsUnchanged(t *testing.T) {
	otherUnique := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "bookings_pkey"}
	otherFK := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "bookings_user_id_fkey"}
	plain := errors.New("plain")

	assert.Same(t, otherUnique, mapDBError(otherUnique))
	assert.Same(t, otherFK, mapDBError(otherFK))
	assert.Equal(t, plain, mapDBError(plain))
	assert.NoError(t, mapDBError(nil))
}

func Test_ClassifyError(t *testing.T) {
	assert.Equal(t, errorTypeLockTimeout, classifyError(rental.ErrLockTimeout))
	assert.Equal(t, errorTypeRejected, classifyError(rental.ErrEmailAlreadyExists))
	assert.Equal(t, errorTypeDatabaseQuery, classifyError(errors.Join(rental.ErrQueryingFailed, errors.New("x"))))
	assert.Equal(t, errorTypeContextCanceled, classifyError(context.Canceled))
}
