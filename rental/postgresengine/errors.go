package postgresengine

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/AntonStoeckl/library-rental-go/rental"
)

// mapDBError translates the SQLSTATE codes the rental domain cares about into domain sentinels.
// The driver error stays in the chain. Anything else is returned unchanged.
func mapDBError(err error) error {
	if err == nil {
		return nil
	}

	code, constraint := sqlState(err)

	switch code {
	case pgerrcode.LockNotAvailable:
		return errors.Join(rental.ErrLockTimeout, err)

	case pgerrcode.UniqueViolation:
		if constraint == constraintUsersEmail {
			return errors.Join(rental.ErrEmailAlreadyExists, err)
		}

	case pgerrcode.ForeignKeyViolation:
		if constraint == constraintBooksAuthor {
			return errors.Join(rental.ErrAuthorNotFound, err)
		}
	}

	return err
}

// sqlState extracts the SQLSTATE and the violated constraint from pgx and lib/pq errors.
func sqlState(err error) (code string, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Constraint
	}

	return "", ""
}
