package returnbook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-rental-go/features/command/returnbook"
	"github.com/AntonStoeckl/library-rental-go/rental"
)

func Test_Decide(t *testing.T) {
	testCases := []struct {
		name        string
		state       returnbook.State
		expectedErr error
	}{
		{
			name:  "success when the user has the book",
			state: returnbook.State{UserFound: true, BookFound: true, BookingFound: true},
		},
		{
			name:        "user missing",
			state:       returnbook.State{},
			expectedErr: rental.ErrUserNotFound,
		},
		{
			name:        "book missing",
			state:       returnbook.State{UserFound: true},
			expectedErr: rental.ErrBookNotFound,
		},
		{
			name:        "book not borrowed by this user",
			state:       returnbook.State{UserFound: true, BookFound: true},
			expectedErr: rental.ErrBookNotBorrowed,
		},
	}

	command := returnbook.Command{UserID: 7, BookID: 1}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			err := returnbook.Decide(tc.state, command)

			// assert
			if tc.expectedErr == nil {
				assert.NoError(t, err)
				return
			}

			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func Test_BuildCommand_Fails_WithNonPositiveIDs(t *testing.T) {
	_, err := returnbook.BuildCommand(-3, 1)
	assert.ErrorIs(t, err, rental.ErrValidation)

	_, err = returnbook.BuildCommand(1, 0)
	assert.ErrorIs(t, err, rental.ErrInvalidID)
}
