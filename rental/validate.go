package rental

import (
	"regexp"
	"strings"
	"time"
)

const (
	minID              = 1
	minPublicationYear = 1
)

var emailPattern = regexp.MustCompile(`^[-.\w]+@([\w-]+\.)+[\w-]+$`)

func validateID(id int64) error {
	if id < minID {
		return validationError(ErrInvalidID)
	}

	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return validationError(ErrBlankName)
	}

	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return validationError(ErrBlankTitle)
	}

	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return validationError(ErrInvalidEmail)
	}

	return nil
}

// validateBirthdate compares calendar dates, so a birthdate of today is valid.
func validateBirthdate(birthdate time.Time, now time.Time) error {
	if toDate(birthdate).After(toDate(now.In(birthdate.Location()))) {
		return validationError(ErrBirthdateInFuture)
	}

	return nil
}

func validatePublicationYear(year int, now time.Time) error {
	if year < minPublicationYear || year > now.Year() {
		return validationError(ErrInvalidPublicationYear)
	}

	return nil
}

func validateAvailableCopies(available int) error {
	if available < 0 {
		return validationError(ErrNegativeAvailableCopies)
	}

	return nil
}

// toDate drops the clock part and keeps the calendar date in UTC.
func toDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
