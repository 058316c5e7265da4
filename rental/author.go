package rental

import "time"

// Author is the author of one or more books.
type Author struct {
	id        int64
	name      string
	birthdate time.Time
}

// BuildAuthor creates a validated Author. The birthdate must not be after today.
func BuildAuthor(id int64, name string, birthdate time.Time) (Author, error) {
	if err := validateID(id); err != nil {
		return Author{}, err
	}

	registration, err := BuildAuthorRegistration(name, birthdate)
	if err != nil {
		return Author{}, err
	}

	return Author{
		id:        id,
		name:      registration.name,
		birthdate: registration.birthdate,
	}, nil
}

func (a Author) ID() int64 {
	return a.id
}

func (a Author) Name() string {
	return a.name
}

// Birthdate returns the calendar date of birth at midnight UTC.
func (a Author) Birthdate() time.Time {
	return a.birthdate
}

// Authors is a list of Author.
type Authors []Author

// AuthorRegistration holds the validated input for an author that has not been assigned an id yet.
type AuthorRegistration struct {
	name      string
	birthdate time.Time
}

// BuildAuthorRegistration validates the fields of a new author.
func BuildAuthorRegistration(name string, birthdate time.Time) (AuthorRegistration, error) {
	if err := validateName(name); err != nil {
		return AuthorRegistration{}, err
	}

	if err := validateBirthdate(birthdate, time.Now()); err != nil {
		return AuthorRegistration{}, err
	}

	return AuthorRegistration{name: name, birthdate: toDate(birthdate)}, nil
}

func (r AuthorRegistration) Name() string {
	return r.name
}

func (r AuthorRegistration) Birthdate() time.Time {
	return r.birthdate
}
