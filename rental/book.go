package rental

import "time"

// Book is a title held by the library. Copies are tracked only as an aggregate count.
type Book struct {
	id              int64
	title           string
	publicationYear int
	authorID        int64
	availableCopies int
}

// BuildBook creates a validated Book.
func BuildBook(id int64, title string, publicationYear int, authorID int64, availableCopies int) (Book, error) {
	if err := validateID(id); err != nil {
		return Book{}, err
	}

	registration, err := BuildBookRegistration(title, publicationYear, authorID, availableCopies)
	if err != nil {
		return Book{}, err
	}

	return Book{
		id:              id,
		title:           registration.title,
		publicationYear: registration.publicationYear,
		authorID:        registration.authorID,
		availableCopies: registration.availableCopies,
	}, nil
}

func (b Book) ID() int64 {
	return b.id
}

func (b Book) Title() string {
	return b.title
}

func (b Book) PublicationYear() int {
	return b.publicationYear
}

func (b Book) AuthorID() int64 {
	return b.authorID
}

// AvailableCopies returns the number of copies that can currently be rented.
func (b Book) AvailableCopies() int {
	return b.availableCopies
}

// IsAvailable reports whether at least one copy can be rented.
func (b Book) IsAvailable() bool {
	return b.availableCopies > 0
}

// Rent takes one copy out of stock.
// The caller must hold the exclusive lock on this book.
func (b *Book) Rent() error {
	if b.availableCopies < 1 {
		return ErrBookNotAvailable
	}

	b.availableCopies--

	return nil
}

// Return puts one copy back into stock. There is no upper bound.
// The caller must hold the exclusive lock on this book.
func (b *Book) Return() {
	b.availableCopies++
}

// Books is a list of Book.
type Books []Book

// BookRegistration holds the validated input for a book that has not been assigned an id yet.
type BookRegistration struct {
	title           string
	publicationYear int
	authorID        int64
	availableCopies int
}

// BuildBookRegistration validates the fields of a new book.
func BuildBookRegistration(title string, publicationYear int, authorID int64, availableCopies int) (BookRegistration, error) {
	if err := validateTitle(title); err != nil {
		return BookRegistration{}, err
	}

	if err := validatePublicationYear(publicationYear, time.Now()); err != nil {
		return BookRegistration{}, err
	}

	if err := validateID(authorID); err != nil {
		return BookRegistration{}, err
	}

	if err := validateAvailableCopies(availableCopies); err != nil {
		return BookRegistration{}, err
	}

	return BookRegistration{
		title:           title,
		publicationYear: publicationYear,
		authorID:        authorID,
		availableCopies: availableCopies,
	}, nil
}

func (r BookRegistration) Title() string {
	return r.title
}

func (r BookRegistration) PublicationYear() int {
	return r.publicationYear
}

func (r BookRegistration) AuthorID() int64 {
	return r.authorID
}

func (r BookRegistration) AvailableCopies() int {
	return r.availableCopies
}
