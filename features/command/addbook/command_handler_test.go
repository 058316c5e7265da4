package addbook_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rental-go/features/command/addbook"
	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/rental/memoryengine"
	"github.com/AntonStoeckl/library-rental-go/testutil/helper"
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// setup
	ctx := context.Background()
	store := givenStore(t)
	handler := addbook.NewCommandHandler(store)
	author := helper.GivenAuthor(t, ctx, store, "Isaac Asimov")

	command, err := addbook.BuildCommand("Foundation", 1951, author.ID(), 1)
	require.NoError(t, err)

	// act
	result, err := handler.Handle(ctx, command)

	// assert
	require.NoError(t, err)

	book, found, err := store.FindBookByID(ctx, result.AssignedID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Foundation", book.Title())
	assert.Equal(t, 1951, book.PublicationYear())
	assert.Equal(t, author.ID(), book.AuthorID())
	assert.Equal(t, 1, book.AvailableCopies())
}

func Test_CommandHandler_Handle_Success_WithZeroCopies(t *testing.T) {
	// setup
	ctx := context.Background()
	store := givenStore(t)
	handler := addbook.NewCommandHandler(store)
	author := helper.GivenAuthor(t, ctx, store, "Isaac Asimov")

	command, err := addbook.BuildCommand("Pebble in the Sky", 1950, author.ID(), 0)
	require.NoError(t, err)

	// act
	result, err := handler.Handle(ctx, command)

	// assert
	require.NoError(t, err)

	unavailable, err := store.ListBooksByAvailability(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []int64{result.AssignedID}, helper.IDsOfBooks(unavailable))
}

func Test_CommandHandler_Handle_Fails_WithUnknownAuthor(t *testing.T) {
	// setup
	ctx := context.Background()
	store := givenStore(t)
	handler := addbook.NewCommandHandler(store)

	command, err := addbook.BuildCommand("Orphan", 2001, 42, 1)
	require.NoError(t, err)

	// act
	result, err := handler.Handle(ctx, command)

	// assert
	assert.ErrorIs(t, err, rental.ErrAuthorNotFound)
	assert.Zero(t, result.AssignedID)

	books, err := store.ListBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func Test_BuildCommand_Fails_WithInvalidInput(t *testing.T) {
	testCases := []struct {
		name        string
		title       string
		year        int
		authorID    int64
		copies      int
		expectedErr error
	}{
		{name: "blank title", title: "", year: 1951, authorID: 1, copies: 1, expectedErr: rental.ErrBlankTitle},
		{name: "year zero", title: "Foundation", year: 0, authorID: 1, copies: 1, expectedErr: rental.ErrInvalidPublicationYear},
		{name: "author id zero", title: "Foundation", year: 1951, authorID: 0, copies: 1, expectedErr: rental.ErrInvalidID},
		{name: "negative copies", title: "Foundation", year: 1951, authorID: 1, copies: -1, expectedErr: rental.ErrNegativeAvailableCopies},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := addbook.BuildCommand(tc.title, tc.year, tc.authorID, tc.copies)

			assert.ErrorIs(t, err, rental.ErrValidation)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func givenStore(t *testing.T) *memoryengine.Store {
	t.Helper()

	store, err := memoryengine.NewStore()
	require.NoError(t, err)

	return store
}
