package authors_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rental-go/features/query/authors"
	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/rental/memoryengine"
	"github.com/AntonStoeckl/library-rental-go/testutil/helper"
)

func Test_QueryHandler_ListAll_And_Lookups(t *testing.T) {
	// setup
	ctx := context.Background()
	store := givenStore(t)
	handler := authors.NewQueryHandler(store)

	leGuin := helper.GivenAuthor(t, ctx, store, "Ursula K. Le Guin")
	asimov := helper.GivenAuthor(t, ctx, store, "Isaac Asimov")

	// act
	all, err := handler.ListAll(ctx)
	require.NoError(t, err)
	byID, foundByID, err := handler.FindByID(ctx, leGuin.ID())
	require.NoError(t, err)
	byName, foundByName, err := handler.FindByName(ctx, "Isaac Asimov")
	require.NoError(t, err)
	_, foundUnknown, err := handler.FindByName(ctx, "Nobody")
	require.NoError(t, err)

	// assert
	require.Len(t, all, 2)
	assert.Equal(t, asimov.ID(), all[0].ID())
	assert.Equal(t, leGuin.ID(), all[1].ID())
	assert.True(t, foundByID)
	assert.Equal(t, leGuin.Name(), byID.Name())
	assert.True(t, foundByName)
	assert.Equal(t, asimov.ID(), byName.ID())
	assert.False(t, foundUnknown)
}

func Test_QueryHandler_BooksOfAuthor(t *testing.T) {
	// setup
	ctx := context.Background()
	store := givenStore(t)
	handler := authors.NewQueryHandler(store)

	asimov := helper.GivenAuthor(t, ctx, store, "Isaac Asimov")
	leGuin := helper.GivenAuthor(t, ctx, store, "Ursula K. Le Guin")
	helper.GivenBook(t, ctx, store, "Foundation", asimov.ID(), 1)
	helper.GivenBook(t, ctx, store, "The Left Hand of Darkness", leGuin.ID(), 1)
	helper.GivenBook(t, ctx, store, "foundation and Empire", asimov.ID(), 1)

	// act
	result, err := handler.BooksOfAuthor(ctx, asimov.ID())

	// assert
	require.NoError(t, err)
	assert.Equal(t, []string{"Foundation", "foundation and Empire"}, helper.TitlesOfBooks(result))
}

func Test_QueryHandler_BooksOfAuthor_WithoutBooks_IsEmpty(t *testing.T) {
	// setup
	ctx := context.Background()
	store := givenStore(t)
	handler := authors.NewQueryHandler(store)
	author := helper.GivenAuthor(t, ctx, store, "Unpublished")

	// act
	result, err := handler.BooksOfAuthor(ctx, author.ID())

	// assert
	require.NoError(t, err)
	assert.Empty(t, result)
}

func Test_QueryHandler_BooksOfAuthor_Fails_ForUnknownAuthor(t *testing.T) {
	// setup
	handler := authors.NewQueryHandler(givenStore(t))

	// act
	_, err := handler.BooksOfAuthor(context.Background(), 404)

	// assert
	assert.ErrorIs(t, err, rental.ErrAuthorNotFound)
	assert.True(t, rental.IsNotFound(err))
}

func givenStore(t *testing.T) *memoryengine.Store {
	t.Helper()

	store, err := memoryengine.NewStore()
	require.NoError(t, err)

	return store
}
