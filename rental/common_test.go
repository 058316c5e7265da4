package rental_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AntonStoeckl/library-rental-go/rental"
)

func Test_IsNotFound(t *testing.T) {
	assert.True(t, rental.IsNotFound(rental.ErrUserNotFound))
	assert.True(t, rental.IsNotFound(rental.ErrAuthorNotFound))
	assert.True(t, rental.IsNotFound(errors.Join(errors.New("wrapped"), rental.ErrBookNotFound)))
	assert.True(t, rental.IsNotFound(rental.ErrBookNotAvailable))
	assert.False(t, rental.IsNotFound(rental.ErrBookAlreadyBorrowed))
	assert.False(t, rental.IsNotFound(nil))
}

func Test_GetConsistencyLevel(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, rental.StrongConsistency, rental.GetConsistencyLevel(ctx))
	assert.Equal(t, rental.EventualConsistency, rental.GetConsistencyLevel(rental.WithEventualConsistency(ctx)))
	assert.Equal(t, rental.StrongConsistency, rental.GetConsistencyLevel(rental.WithStrongConsistency(rental.WithEventualConsistency(ctx))))
	assert.Equal(t, "eventual", rental.EventualConsistency.String())
	assert.Equal(t, "unknown", rental.ConsistencyLevel(42).String())
}
