package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/rental/postgresengine/internal/adapters"
)

const (
	defaultLockTimeout = 5 * time.Second

	tableUsers    = "users"
	tableAuthors  = "authors"
	tableBooks    = "books"
	tableBookings = "bookings"

	colID              = "id"
	colName            = "name"
	colEmail           = "email"
	colBirthdate       = "birthdate"
	colTitle           = "title"
	colPublicationYear = "publication_year"
	colAuthorID        = "author_id"
	colAvailableCopies = "available_copies"
	colUserID          = "user_id"
	colBookID          = "book_id"

	constraintUsersEmail  = "users_email_key"
	constraintBooksAuthor = "books_author_id_fkey"

	dialectPostgres = "postgres"

	sqlSetLocalLockTimeout = "SET LOCAL lock_timeout = '%dms'"
)

// schemaStatements create the rental schema idempotently, one statement at a time.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS authors (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		birthdate DATE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS books (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		publication_year INTEGER NOT NULL,
		author_id BIGINT NOT NULL,
		available_copies INTEGER NOT NULL,
		CONSTRAINT books_author_id_fkey FOREIGN KEY (author_id) REFERENCES authors (id),
		CONSTRAINT books_available_copies_check CHECK (available_copies >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		user_id BIGINT NOT NULL,
		book_id BIGINT NOT NULL,
		PRIMARY KEY (user_id, book_id),
		CONSTRAINT bookings_user_id_fkey FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT bookings_book_id_fkey FOREIGN KEY (book_id) REFERENCES books (id)
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_book_id_idx ON bookings (book_id)`,
	`CREATE INDEX IF NOT EXISTS books_author_id_idx ON books (author_id)`,
}

// Store is the PostgreSQL implementation of the rental store.
// Reads outside of transactions honor the consistency level carried by the context.
type Store struct {
	db               adapters.DBAdapter
	lockTimeout      time.Duration
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, rental.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromPGXPoolWithReplica creates a new Store that sends eventually consistent reads to the replica pool.
func NewStoreFromPGXPoolWithReplica(primary *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (*Store, error) {
	if primary == nil || replica == nil {
		return nil, rental.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapterWithReplica(primary, replica), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, rental.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLDBWithReplica creates a new Store that sends eventually consistent reads to the replica database.
func NewStoreFromSQLDBWithReplica(primary *sql.DB, replica *sql.DB, options ...Option) (*Store, error) {
	if primary == nil || replica == nil {
		return nil, rental.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapterWithReplica(primary, replica), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, rental.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

// NewStoreFromSQLXWithReplica creates a new Store that sends eventually consistent reads to the replica database.
func NewStoreFromSQLXWithReplica(primary *sqlx.DB, replica *sqlx.DB, options ...Option) (*Store, error) {
	if primary == nil || replica == nil {
		return nil, rental.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapterWithReplica(primary, replica), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	s := &Store{
		db:          db,
		lockTimeout: defaultLockTimeout,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// LockTimeout returns the configured lock wait limit.
func (s *Store) LockTimeout() time.Duration {
	return s.lockTimeout
}

// CreateSchema creates the users, authors, books and bookings tables if they do not exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, statement := range schemaStatements {
		start := time.Now()
		_, err := s.db.Exec(ctx, statement)
		s.logQueryWithDuration(ctx, statement, operationCreateSchema, time.Since(start))

		if err != nil {
			s.logError(ctx, logMsgDBExecFailed, err, logAttrQuery, statement)
			return errors.Join(rental.ErrWritingFailed, err)
		}
	}

	s.logOperation(ctx, operationCreateSchema)

	return nil
}

// InTransaction runs fn inside a database transaction on the primary.
// The transaction commits if fn returns nil and rolls back otherwise, including on panic.
// Errors returned by fn are passed through unchanged.
func (s *Store) InTransaction(ctx context.Context, fn rental.TxFunc) (err error) {
	ctx = rental.WithStrongConsistency(ctx)
	observer, ctx := s.startOperation(ctx, operationTransaction)
	defer func() { observer.finish(err) }()

	dbTx, beginErr := s.db.BeginTx(ctx)
	if beginErr != nil {
		s.logError(ctx, logMsgBeginTxFailed, beginErr)
		return errors.Join(rental.ErrTransactionFailed, beginErr)
	}

	committed := false
	defer func() {
		if committed {
			return
		}

		if rollbackErr := dbTx.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil {
			s.logWarn(ctx, logMsgRollbackFailed, logAttrError, rollbackErr.Error())
		}
	}()

	setTimeout := fmt.Sprintf(sqlSetLocalLockTimeout, s.lockTimeout.Milliseconds())
	if _, execErr := dbTx.Exec(ctx, setTimeout); execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, setTimeout)
		return errors.Join(rental.ErrTransactionFailed, execErr)
	}

	if err = fn(ctx, &transaction{store: s, tx: dbTx}); err != nil {
		return err
	}

	if commitErr := dbTx.Commit(ctx); commitErr != nil {
		s.logError(ctx, logMsgCommitFailed, commitErr)
		return errors.Join(rental.ErrTransactionFailed, mapDBError(commitErr))
	}

	committed = true

	return nil
}
