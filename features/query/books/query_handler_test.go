package books_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-rental-go/features/query/books"
	"github.com/AntonStoeckl/library-rental-go/rental"
	"github.com/AntonStoeckl/library-rental-go/rental/memoryengine"
	"github.com/AntonStoeckl/library-rental-go/testutil/helper"
)

type catalog struct {
	store      *memoryengine.Store
	foundation rental.Book
	robots     rental.Book
	darkness   rental.Book
	pebble     rental.Book
}

func givenCatalog(t *testing.T) catalog {
	t.Helper()

	ctx := context.Background()
	store, err := memoryengine.NewStore()
	require.NoError(t, err)

	asimov := helper.GivenAuthor(t, ctx, store, "Isaac Asimov")
	leGuin := helper.GivenAuthor(t, ctx, store, "Ursula K. Le Guin")

	return catalog{
		store:      store,
		foundation: helper.GivenBookFromYear(t, ctx, store, "Foundation", 1951, asimov.ID(), 1),
		robots:     helper.GivenBookFromYear(t, ctx, store, "I, Robot", 1950, asimov.ID(), 3),
		darkness:   helper.GivenBookFromYear(t, ctx, store, "The Left Hand of Darkness", 1969, leGuin.ID(), 2),
		pebble:     helper.GivenBookFromYear(t, ctx, store, "Pebble in the Sky", 1950, asimov.ID(), 0),
	}
}

func Test_QueryHandler_ListAll_OrdersByTitle(t *testing.T) {
	// setup
	c := givenCatalog(t)
	handler := books.NewQueryHandler(c.store)

	// act
	result, err := handler.ListAll(context.Background())

	// assert
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"Foundation", "I, Robot", "Pebble in the Sky", "The Left Hand of Darkness"},
		helper.TitlesOfBooks(result),
	)
}

func Test_QueryHandler_Lookups(t *testing.T) {
	// setup
	ctx := context.Background()
	c := givenCatalog(t)
	handler := books.NewQueryHandler(c.store)

	// act and assert
	byID, found, err := handler.FindByID(ctx, c.darkness.ID())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, c.darkness, byID)

	byTitle, found, err := handler.FindByTitle(ctx, "Foundation")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, c.foundation, byTitle)

	_, found, err = handler.FindByTitle(ctx, "foundation")
	require.NoError(t, err)
	assert.False(t, found, "title lookup is exact")

	_, found, err = handler.FindByID(ctx, 999)
	require.NoError(t, err)
	assert.False(t, found)
}

func Test_QueryHandler_Filters(t *testing.T) {
	// setup
	c := givenCatalog(t)
	handler := books.NewQueryHandler(c.store)

	testCases := []struct {
		name     string
		query    func(ctx context.Context) (rental.Books, error)
		expected []int64
	}{
		{
			name:     "by year",
			query:    func(ctx context.Context) (rental.Books, error) { return handler.ByYear(ctx, 1950) },
			expected: []int64{c.robots.ID(), c.pebble.ID()},
		},
		{
			name:     "by year without match",
			query:    func(ctx context.Context) (rental.Books, error) { return handler.ByYear(ctx, 2001) },
			expected: []int64{},
		},
		{
			name:     "by author name",
			query:    func(ctx context.Context) (rental.Books, error) { return handler.ByAuthorName(ctx, "Isaac Asimov") },
			expected: []int64{c.foundation.ID(), c.robots.ID(), c.pebble.ID()},
		},
		{
			name:     "by unknown author name",
			query:    func(ctx context.Context) (rental.Books, error) { return handler.ByAuthorName(ctx, "Nobody") },
			expected: []int64{},
		},
		{
			name:     "available",
			query:    func(ctx context.Context) (rental.Books, error) { return handler.ByAvailability(ctx, true) },
			expected: []int64{c.foundation.ID(), c.robots.ID(), c.darkness.ID()},
		},
		{
			name:     "not available",
			query:    func(ctx context.Context) (rental.Books, error) { return handler.ByAvailability(ctx, false) },
			expected: []int64{c.pebble.ID()},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			result, err := tc.query(context.Background())

			// assert
			require.NoError(t, err)
			assert.Equal(t, tc.expected, helper.IDsOfBooks(result))
		})
	}
}

type consistencyRecordingStore struct {
	books.Store
	levels []rental.ConsistencyLevel
}

func (s *consistencyRecordingStore) ListBooks(ctx context.Context) (rental.Books, error) {
	s.levels = append(s.levels, rental.GetConsistencyLevel(ctx))
	return rental.Books{}, nil
}

func (s *consistencyRecordingStore) FindBookByID(ctx context.Context, _ int64) (rental.Book, bool, error) {
	s.levels = append(s.levels, rental.GetConsistencyLevel(ctx))
	return rental.Book{}, false, nil
}

func Test_QueryHandler_ReadsWithEventualConsistency(t *testing.T) {
	// setup
	store := &consistencyRecordingStore{}
	handler := books.NewQueryHandler(store)
	ctx := rental.WithStrongConsistency(context.Background())

	// act
	_, err := handler.ListAll(ctx)
	require.NoError(t, err)
	_, _, err = handler.FindByID(ctx, 1)
	require.NoError(t, err)

	// assert
	assert.Equal(t, []rental.ConsistencyLevel{rental.EventualConsistency, rental.EventualConsistency}, store.levels)
}
