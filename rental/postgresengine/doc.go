// Package postgresengine provides a PostgreSQL implementation of the rental store.
//
// It supports multiple database adapters (pgx, sql.DB, sqlx) and implements the
// rental.Tx contract with real database transactions. FindAndLockBook issues
// SELECT ... FOR UPDATE, and every transaction sets a local lock_timeout, so a
// caller waiting for a busy book fails with rental.ErrLockTimeout instead of
// blocking indefinitely.
//
// Driver errors are classified by SQLSTATE:
//   - unique_violation on the users email constraint -> rental.ErrEmailAlreadyExists
//   - foreign_key_violation on the books author constraint -> rental.ErrAuthorNotFound
//   - lock_not_available -> rental.ErrLockTimeout
//
// Usage examples:
//
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewStoreFromPGXPool(
//		db,
//		postgresengine.WithLockTimeout(2*time.Second),
//		postgresengine.WithLogger(logger),
//	)
//
//	err := store.InTransaction(ctx, func(ctx context.Context, tx rental.Tx) error {
//		book, found, err := tx.FindAndLockBook(ctx, bookID)
//		// ...
//		return tx.UpdateBook(ctx, book)
//	})
package postgresengine
