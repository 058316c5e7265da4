package rental

import (
	"errors"
	"fmt"
)

// Domain errors. Callers branch on them with errors.Is.
var (
	ErrUserNotFound = errors.New("user not found")

	ErrAuthorNotFound = errors.New("author not found")

	ErrBookNotFound = errors.New("book not found")

	// ErrBookNotAvailable is returned when a book exists but has no copies left.
	// It also matches ErrBookNotFound, which is the signal callers historically saw.
	ErrBookNotAvailable = fmt.Errorf("%w: no copies available", ErrBookNotFound)

	ErrBookAlreadyBorrowed = errors.New("book is already borrowed by this user")

	ErrBookNotBorrowed = errors.New("book is not borrowed by this user")

	ErrEmailAlreadyExists = errors.New("email already exists")

	// ErrLockTimeout is returned when the exclusive book lock could not be obtained
	// within the configured lock timeout. It is transient and safe to retry.
	ErrLockTimeout = errors.New("timed out waiting for book lock")
)

// Validation errors. Every one of them is returned joined with ErrValidation.
var (
	ErrValidation = errors.New("validation failed")

	ErrInvalidID = errors.New("id must be positive")

	ErrBlankName = errors.New("name must not be blank")

	ErrBlankTitle = errors.New("title must not be blank")

	ErrInvalidEmail = errors.New("email has an invalid format")

	ErrBirthdateInFuture = errors.New("birthdate must not be in the future")

	ErrInvalidPublicationYear = errors.New("publication year must be between 1 and the current year")

	ErrNegativeAvailableCopies = errors.New("available copies must not be negative")
)

// Infrastructure errors used by the storage engines.
var (
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	ErrInvalidLockTimeout = errors.New("lock timeout must be positive")

	ErrBuildingQueryFailed = errors.New("building query failed")

	ErrQueryingFailed = errors.New("querying the database failed")

	ErrScanningDBRowFailed = errors.New("scanning db row failed")

	ErrWritingFailed = errors.New("writing to the database failed")

	ErrTransactionFailed = errors.New("transaction failed")

	ErrInvalidStoredEntity = errors.New("stored entity is invalid")
)

// IsNotFound reports whether err is one of the not-found domain errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrAuthorNotFound) ||
		errors.Is(err, ErrBookNotFound)
}

func validationError(specific error) error {
	return errors.Join(ErrValidation, specific)
}
