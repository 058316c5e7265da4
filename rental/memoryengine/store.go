package memoryengine

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/AntonStoeckl/library-rental-go/rental"
)

const (
	defaultLockTimeout = 5 * time.Second

	logMsgCommitted   = "memorystore: transaction committed"
	logMsgRolledBack  = "memorystore: transaction rolled back"
	logMsgLockTimeout = "memorystore: lock wait timed out"

	logAttrError      = "error"
	logAttrBookID     = "book_id"
	logAttrBookWrites = "book_writes"
	logAttrBookings   = "booking_writes"
)

type bookingKey struct {
	userID int64
	bookID int64
}

// Store is an in-memory rental store. The zero value is not usable, use NewStore.
type Store struct {
	mu       sync.RWMutex
	users    map[int64]rental.User
	authors  map[int64]rental.Author
	books    map[int64]rental.Book
	bookings map[bookingKey]rental.Booking

	lastUserID   int64
	lastAuthorID int64
	lastBookID   int64

	locks       *lockTable
	lockTimeout time.Duration
	logger      rental.Logger
}

// NewStore creates an empty Store with optional configuration.
func NewStore(options ...Option) (*Store, error) {
	s := &Store{
		users:       make(map[int64]rental.User),
		authors:     make(map[int64]rental.Author),
		books:       make(map[int64]rental.Book),
		bookings:    make(map[bookingKey]rental.Booking),
		locks:       newLockTable(),
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

// InTransaction runs fn with a transaction whose writes are applied atomically when fn returns nil.
// Book locks taken through the transaction are released when InTransaction returns, also on panic.
func (s *Store) InTransaction(ctx context.Context, fn rental.TxFunc) error {
	tx := newTransaction(s)
	defer tx.close()

	if err := fn(ctx, tx); err != nil {
		s.logDebug(logMsgRolledBack, logAttrError, err.Error())
		return err
	}

	if err := ctx.Err(); err != nil {
		s.logDebug(logMsgRolledBack, logAttrError, err.Error())
		return err
	}

	s.commit(tx)

	return nil
}

func (s *Store) commit(tx *transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, book := range tx.bookWrites {
		s.books[id] = book
	}

	for key, write := range tx.bookingWrites {
		if write.exists {
			s.bookings[key] = write.booking
		} else {
			delete(s.bookings, key)
		}
	}

	s.logDebug(logMsgCommitted, logAttrBookWrites, len(tx.bookWrites), logAttrBookings, len(tx.bookingWrites))
}

// CreateUser stores a user and returns the assigned id.
// A duplicate email fails with rental.ErrEmailAlreadyExists.
func (s *Store) CreateUser(_ context.Context, registration rental.UserRegistration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email() == registration.Email() {
			return 0, rental.ErrEmailAlreadyExists
		}
	}

	user, err := rental.BuildUser(s.lastUserID+1, registration.Name(), registration.Email())
	if err != nil {
		return 0, err
	}

	s.lastUserID++
	s.users[user.ID()] = user

	return user.ID(), nil
}

// CreateAuthor stores an author and returns the assigned id.
func (s *Store) CreateAuthor(_ context.Context, registration rental.AuthorRegistration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	author, err := rental.BuildAuthor(s.lastAuthorID+1, registration.Name(), registration.Birthdate())
	if err != nil {
		return 0, err
	}

	s.lastAuthorID++
	s.authors[author.ID()] = author

	return author.ID(), nil
}

// CreateBook stores a book and returns the assigned id.
// An unknown author fails with rental.ErrAuthorNotFound.
func (s *Store) CreateBook(_ context.Context, registration rental.BookRegistration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.authors[registration.AuthorID()]; !ok {
		return 0, rental.ErrAuthorNotFound
	}

	book, err := rental.BuildBook(
		s.lastBookID+1,
		registration.Title(),
		registration.PublicationYear(),
		registration.AuthorID(),
		registration.AvailableCopies(),
	)
	if err != nil {
		return 0, err
	}

	s.lastBookID++
	s.books[book.ID()] = book

	return book.ID(), nil
}

func (s *Store) FindUserByID(_ context.Context, id int64) (rental.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]

	return user, ok, nil
}

// FindUserByName returns the user with the lowest id among those with exactly the given name.
func (s *Store) FindUserByName(_ context.Context, name string) (rental.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return firstByID(s.users, func(u rental.User) bool { return u.Name() == name }, rental.User.ID)
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (rental.User, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return firstByID(s.users, func(u rental.User) bool { return u.Email() == email }, rental.User.ID)
}

// ListUsers returns all users ordered case-insensitively by name, then id.
func (s *Store) ListUsers(_ context.Context) (rental.Users, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sorted(s.users, acceptAll[rental.User], rental.User.Name, rental.User.ID), nil
}

func (s *Store) FindAuthorByID(_ context.Context, id int64) (rental.Author, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	author, ok := s.authors[id]

	return author, ok, nil
}

func (s *Store) FindAuthorByName(_ context.Context, name string) (rental.Author, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return firstByID(s.authors, func(a rental.Author) bool { return a.Name() == name }, rental.Author.ID)
}

func (s *Store) ListAuthors(_ context.Context) (rental.Authors, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sorted(s.authors, acceptAll[rental.Author], rental.Author.Name, rental.Author.ID), nil
}

// FindBookByID returns the committed state of the book without locking it.
func (s *Store) FindBookByID(_ context.Context, id int64) (rental.Book, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	book, ok := s.books[id]

	return book, ok, nil
}

func (s *Store) FindBookByTitle(_ context.Context, title string) (rental.Book, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return firstByID(s.books, func(b rental.Book) bool { return b.Title() == title }, rental.Book.ID)
}

// ListBooks returns all books ordered case-insensitively by title, then id.
func (s *Store) ListBooks(_ context.Context) (rental.Books, error) {
	return s.listBooks(acceptAll[rental.Book]), nil
}

func (s *Store) ListBooksByYear(_ context.Context, year int) (rental.Books, error) {
	return s.listBooks(func(b rental.Book) bool { return b.PublicationYear() == year }), nil
}

func (s *Store) ListBooksByAuthorID(_ context.Context, authorID int64) (rental.Books, error) {
	return s.listBooks(func(b rental.Book) bool { return b.AuthorID() == authorID }), nil
}

// ListBooksByAuthorName returns the books of every author whose name matches exactly.
func (s *Store) ListBooksByAuthorName(_ context.Context, authorName string) (rental.Books, error) {
	s.mu.RLock()
	authorIDs := make(map[int64]struct{})
	for id, author := range s.authors {
		if author.Name() == authorName {
			authorIDs[id] = struct{}{}
		}
	}
	s.mu.RUnlock()

	return s.listBooks(func(b rental.Book) bool {
		_, ok := authorIDs[b.AuthorID()]
		return ok
	}), nil
}

func (s *Store) ListBooksByAvailability(_ context.Context, available bool) (rental.Books, error) {
	return s.listBooks(func(b rental.Book) bool { return b.IsAvailable() == available }), nil
}

// ListBooksByUserID returns the books the user currently has booked.
func (s *Store) ListBooksByUserID(_ context.Context, userID int64) (rental.Books, error) {
	s.mu.RLock()
	bookIDs := make(map[int64]struct{})
	for key := range s.bookings {
		if key.userID == userID {
			bookIDs[key.bookID] = struct{}{}
		}
	}
	s.mu.RUnlock()

	return s.listBooks(func(b rental.Book) bool {
		_, ok := bookIDs[b.ID()]
		return ok
	}), nil
}

func (s *Store) listBooks(accept func(rental.Book) bool) rental.Books {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sorted(s.books, accept, rental.Book.Title, rental.Book.ID)
}

func (s *Store) logDebug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Store) logWarn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func acceptAll[T any](T) bool {
	return true
}

// sorted filters the values of m and orders them by lowercased label, then id.
func sorted[T any](m map[int64]T, accept func(T) bool, label func(T) string, id func(T) int64) []T {
	result := make([]T, 0, len(m))
	for _, v := range m {
		if accept(v) {
			result = append(result, v)
		}
	}

	slices.SortFunc(result, func(a, b T) int {
		return cmp.Or(
			strings.Compare(strings.ToLower(label(a)), strings.ToLower(label(b))),
			cmp.Compare(id(a), id(b)),
		)
	})

	return result
}

// firstByID returns the matching value with the lowest id.
func firstByID[T any](m map[int64]T, match func(T) bool, id func(T) int64) (T, bool, error) {
	var (
		best  T
		found bool
	)

	for _, v := range m {
		if match(v) && (!found || id(v) < id(best)) {
			best = v
			found = true
		}
	}

	return best, found, nil
}
