package registeruser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rental-go/features/command/registeruser"
	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/rental/memoryengine"
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// setup
	ctx := context.Background()
	store := givenStore(t)
	handler := registeruser.NewCommandHandler(store)

	command, err := registeruser.BuildCommand("Ada Reader", "ada@library.test")
	require.NoError(t, err)

	// act
	result, err := handler.Handle(ctx, command)

	// assert
	require.NoError(t, err)
	assert.Positive(t, result.AssignedID)

	user, found, err := store.FindUserByID(ctx, result.AssignedID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Ada Reader", user.Name())
	assert.Equal(t, "ada@library.test", user.Email())
}

func Test_CommandHandler_Handle_AssignsIncreasingIDs(t *testing.T) {
	// setup
	ctx := context.Background()
	handler := registeruser.NewCommandHandler(givenStore(t))

	first, err := registeruser.BuildCommand("First", "first@library.test")
	require.NoError(t, err)
	second, err := registeruser.BuildCommand("Second", "second@library.test")
	require.NoError(t, err)

	// act
	firstResult, err := handler.Handle(ctx, first)
	require.NoError(t, err)
	secondResult, err := handler.Handle(ctx, second)
	require.NoError(t, err)

	// assert
	assert.Greater(t, secondResult.AssignedID, firstResult.AssignedID)
}

func Test_CommandHandler_Handle_Fails_WithDuplicateEmail(t *testing.T) {
	// setup
	ctx := context.Background()
	store := givenStore(t)
	handler := registeruser.NewCommandHandler(store)

	command, err := registeruser.BuildCommand("Ada Reader", "ada@library.test")
	require.NoError(t, err)
	_, err = handler.Handle(ctx, command)
	require.NoError(t, err)

	duplicate, err := registeruser.BuildCommand("Someone Else", "ada@library.test")
	require.NoError(t, err)

	// act
	result, err := handler.Handle(ctx, duplicate)

	// assert
	assert.ErrorIs(t, err, rental.ErrEmailAlreadyExists)
	assert.Zero(t, result.AssignedID)

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func Test_BuildCommand_Fails_WithInvalidInput(t *testing.T) {
	testCases := []struct {
		name        string
		userName    string
		email       string
		expectedErr error
	}{
		{name: "blank name", userName: "  ", email: "ada@library.test", expectedErr: rental.ErrBlankName},
		{name: "malformed email", userName: "Ada", email: "ada.library.test", expectedErr: rental.ErrInvalidEmail},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := registeruser.BuildCommand(tc.userName, tc.email)

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
