package rental_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rental-go/rental"
)

func Test_BuildBook_Success(t *testing.T) {
	// act
	book, err := rental.BuildBook(3, "Emma", 1815, 7, 2)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(3), book.ID())
	assert.Equal(t, "Emma", book.Title())
	assert.Equal(t, 1815, book.PublicationYear())
	assert.Equal(t, int64(7), book.AuthorID())
	assert.Equal(t, 2, book.AvailableCopies())
	assert.True(t, book.IsAvailable())
}

func Test_BuildBook_Success_AtTheYearBoundaries(t *testing.T) {
	// act
	_, firstYearErr := rental.BuildBook(1, "Ancient Scroll", 1, 1, 0)
	_, currentYearErr := rental.BuildBook(1, "Fresh Print", time.Now().Year(), 1, 0)

	// assert
	assert.NoError(t, firstYearErr)
	assert.NoError(t, currentYearErr)
}

func Test_BuildBook_Fails_WithInvalidInput(t *testing.T) {
	nextYear := time.Now().Year() + 1

	testCases := []struct {
		name        string
		id          int64
		title       string
		year        int
		authorID    int64
		available   int
		expectedErr error
	}{
		{name: "zero id", id: 0, title: "Emma", year: 1815, authorID: 1, available: 1, expectedErr: rental.ErrInvalidID},
		{name: "blank title", id: 1, title: "  ", year: 1815, authorID: 1, available: 1, expectedErr: rental.ErrBlankTitle},
		{name: "year zero", id: 1, title: "Emma", year: 0, authorID: 1, available: 1, expectedErr: rental.ErrInvalidPublicationYear},
		{name: "year in the future", id: 1, title: "Emma", year: nextYear, authorID: 1, available: 1, expectedErr: rental.ErrInvalidPublicationYear},
		{name: "zero author id", id: 1, title: "Emma", year: 1815, authorID: 0, available: 1, expectedErr: rental.ErrInvalidID},
		{name: "negative copies", id: 1, title: "Emma", year: 1815, authorID: 1, available: -1, expectedErr: rental.ErrNegativeAvailableCopies},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := rental.BuildBook(tc.id, tc.title, tc.year, tc.authorID, tc.available)

			// assert
			assert.ErrorIs(t, err, rental.ErrValidation)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_Book_Rent_DecrementsAvailableCopies(t *testing.T) {
	// arrange
	book, err := rental.BuildBook(1, "Emma", 1815, 1, 1)
	require.NoError(t, err)

	// act
	rentErr := book.Rent()

	// assert
	assert.NoError(t, rentErr)
	assert.Equal(t, 0, book.AvailableCopies())
	assert.False(t, book.IsAvailable())
}

func Test_Book_Rent_Fails_WhenNoCopiesAreLeft(t *testing.T) {
	// arrange
	book, err := rental.BuildBook(1, "Emma", 1815, 1, 0)
	require.NoError(t, err)

	// act
	rentErr := book.Rent()

	// assert
	assert.ErrorIs(t, rentErr, rental.ErrBookNotAvailable)
	assert.ErrorIs(t, rentErr, rental.ErrBookNotFound)
	assert.Equal(t, 0, book.AvailableCopies())
}

func Test_Book_Return_IncrementsAvailableCopies(t *testing.T) {
	// arrange
	book, err := rental.BuildBook(1, "Emma", 1815, 1, 0)
	require.NoError(t, err)

	// act
	book.Return()
	book.Return()

	// assert
	assert.Equal(t, 2, book.AvailableCopies())
}
