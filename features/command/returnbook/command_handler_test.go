package returnbook_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rental-go/features/command/rentbook"
	"github.com/AntonStoeckl/library-rental-go/features/command/returnbook"
	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/rental/memoryengine"
	"github.com/AntonStoeckl/library-rental-go/shared/shell"
	"github.com/AntonStoeckl/library-rental-go/testutil/helper"
)

func Test_CommandHandler_Handle_Success(t *testing.T) {
	// setup
	ctx := context.Background()
	store := givenStore(t)
	rentHandler := rentbook.NewCommandHandler(store)
	returnHandler := returnbook.NewCommandHandler(store)

	author := helper.GivenAuthor(t, ctx, store, "Isaac Asimov")
	book := helper.GivenBookFromYear(t, ctx, store, "Foundation", 1951, author.ID(), 1)
	user := helper.GivenUser(t, ctx, store, "Reader A")
	givenRented(t, ctx, rentHandler, user.ID(), book.ID())

	// act
	result, err := returnHandler.Handle(ctx, givenReturnCommand(t, user.ID(), book.ID()))

	// assert
	require.NoError(t, err)
	assert.Equal(t, 1, result.RetryAttempts)
	assertAvailableCopies(t, store, book.ID(), 1)
	assertNoBorrowedBooks(t, store, user.ID())
}

func Test_CommandHandler_Handle_FoundationScenario(t *testing.T) {
	// setup
	ctx := context.Background()
	store := givenStore(t)
	rentHandler := rentbook.NewCommandHandler(store)
	returnHandler := returnbook.NewCommandHandler(store)

	author := helper.GivenAuthor(t, ctx, store, "Isaac Asimov")
	book := helper.GivenBookFromYear(t, ctx, store, "Foundation", 1951, author.ID(), 1)
	userA := helper.GivenUser(t, ctx, store, "Reader A")
	userB := helper.GivenUser(t, ctx, store, "Reader B")

	// act and assert step by step
	givenRented(t, ctx, rentHandler, userA.ID(), book.ID())
	assertAvailableCopies(t, store, book.ID(), 0)

	_, err := rentHandler.Handle(ctx, rentbook.Command{UserID: userB.ID(), BookID: book.ID()})
	assert.ErrorIs(t, err, rental.ErrBookNotAvailable)
	assertAvailableCopies(t, store, book.ID(), 0)

	_, err = returnHandler.Handle(ctx, givenReturnCommand(t, userA.ID(), book.ID()))
	require.NoError(t, err)
	assertAvailableCopies(t, store, book.ID(), 1)
	assertNoBorrowedBooks(t, store, userA.ID())

	givenRented(t, ctx, rentHandler, userB.ID(), book.ID())
	assertAvailableCopies(t, store, book.ID(), 0)

	books, err := store.ListBooksByUserID(ctx, userB.ID())
	require.NoError(t, err)
	assert.Equal(t, []int64{book.ID()}, helper.IDsOfBooks(books))
}

func Test_CommandHandler_Handle_Rejections_LeaveStateUnchanged(t *testing.T) {
	// setup
	ctx := context.Background()
	store := givenStore(t)
	returnHandler := returnbook.NewCommandHandler(store)

	author := helper.GivenAuthor(t, ctx, store, "Ursula K. Le Guin")
	book := helper.GivenBook(t, ctx, store, "The Lathe of Heaven", author.ID(), 3)
	user := helper.GivenUser(t, ctx, store, "Reader A")

	testCases := []struct {
		name        string
		userID      int64
		bookID      int64
		expectedErr error
	}{
		{name: "unknown user", userID: 999, bookID: book.ID(), expectedErr: rental.ErrUserNotFound},
		{name: "unknown book", userID: user.ID(), bookID: 999, expectedErr: rental.ErrBookNotFound},
		{name: "book never rented", userID: user.ID(), bookID: book.ID(), expectedErr: rental.ErrBookNotBorrowed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := returnHandler.Handle(ctx, givenReturnCommand(t, tc.userID, tc.bookID))

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
			assertAvailableCopies(t, store, book.ID(), 3)
		})
	}
}

func Test_CommandHandler_Handle_ReturningTwice_Fails(t *testing.T) {
	// setup
	ctx := context.Background()
	store := givenStore(t)
	rentHandler := rentbook.NewCommandHandler(store)
	returnHandler := returnbook.NewCommandHandler(store)

	author := helper.GivenAuthor(t, ctx, store, "Isaac Asimov")
	book := helper.GivenBook(t, ctx, store, "The End of Eternity", author.ID(), 1)
	user := helper.GivenUser(t, ctx, store, "Reader A")
	givenRented(t, ctx, rentHandler, user.ID(), book.ID())

	_, err := returnHandler.Handle(ctx, givenReturnCommand(t, user.ID(), book.ID()))
	require.NoError(t, err)

	// act
	_, err = returnHandler.Handle(ctx, givenReturnCommand(t, user.ID(), book.ID()))

	// assert
	assert.ErrorIs(t, err, rental.ErrBookNotBorrowed)
	assertAvailableCopies(t, store, book.ID(), 1)
}

func Test_CommandHandler_Handle_LockTimeout_IsReported(t *testing.T) {
	// setup
	ctx := context.Background()
	store := givenStore(t, memoryengine.WithLockTimeout(5*time.Millisecond))
	rentHandler := rentbook.NewCommandHandler(store)
	returnHandler := returnbook.NewCommandHandler(store, returnbook.WithRetryOptions(
		shell.WithMaxAttempts(2),
		shell.WithBaseDelay(time.Millisecond),
	))

	author := helper.GivenAuthor(t, ctx, store, "Isaac Asimov")
	book := helper.GivenBook(t, ctx, store, "The Gods Themselves", author.ID(), 1)
	user := helper.GivenUser(t, ctx, store, "Reader A")
	givenRented(t, ctx, rentHandler, user.ID(), book.ID())

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)

		_ = store.InTransaction(ctx, func(txCtx context.Context, tx rental.Tx) error {
			if _, _, err := tx.FindAndLockBook(txCtx, book.ID()); err != nil {
				return err
			}

			close(locked)
			<-release

			return nil
		})
	}()

	<-locked

	// act
	result, err := returnHandler.Handle(ctx, givenReturnCommand(t, user.ID(), book.ID()))
	close(release)
	<-done

	// assert
	assert.ErrorIs(t, err, rental.ErrLockTimeout)
	assert.Equal(t, 2, result.RetryAttempts)
	assert.True(t, result.RetriesExhausted)
	assertAvailableCopies(t, store, book.ID(), 0)
}

func givenStore(t *testing.T, options ...memoryengine.Option) *memoryengine.Store {
	t.Helper()

	store, err := memoryengine.NewStore(options...)
	require.NoError(t, err)

	return store
}

func givenRented(t *testing.T, ctx context.Context, handler rentbook.CommandHandler, userID int64, bookID int64) {
	t.Helper()

	command, err := rentbook.BuildCommand(userID, bookID)
	require.NoError(t, err)

	_, err = handler.Handle(ctx, command)
	require.NoError(t, err, "error in arranging test data")
}

func givenReturnCommand(t *testing.T, userID int64, bookID int64) returnbook.Command {
	t.Helper()

	command, err := returnbook.BuildCommand(userID, bookID)
	require.NoError(t, err)

	return command
}

func assertAvailableCopies(t *testing.T, store *memoryengine.Store, bookID int64, expected int) {
	t.Helper()

	book, found, err := store.FindBookByID(context.Background(), bookID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, book.AvailableCopies())
}

func assertNoBorrowedBooks(t *testing.T, store *memoryengine.Store, userID int64) {
	t.Helper()

	books, err := store.ListBooksByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, books)
}
