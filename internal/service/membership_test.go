package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram-app/backend/internal/service"
	"github.com/foodgram-app/backend/internal/testdb"
)

func TestFavoriteToggle(t *testing.T) {
	db := testdb.Setup(t)
	svc := service.NewMembershipService(db)
	author := createUser(t, db, "author")
	fan := createUser(t, db, "fan")
	tag := createTag(t, db, "Dinner", "dinner")
	flour := createIngredient(t, db, "flour", "g")
	recipe := createRecipe(t, db, author, "Cake", tag, line(flour, 300))

	ctx := context.Background()

	got, err := svc.AddFavorite(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.ID, got.ID)

	// second add is a conflict, not a no-op
	_, err = svc.AddFavorite(ctx, fan.ID, recipe.ID)
	var conflict *service.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "recipe is already in favorites", conflict.Message)

	require.NoError(t, svc.RemoveFavorite(ctx, fan.ID, recipe.ID))

	// removing again reports what was not there
	err = svc.RemoveFavorite(ctx, fan.ID, recipe.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	// re-add after remove works
	_, err = svc.AddFavorite(ctx, fan.ID, recipe.ID)
	require.NoError(t, err)
}

func TestCartToggle(t *testing.T) {
	db := testdb.Setup(t)
	svc := service.NewMembershipService(db)
	author := createUser(t, db, "author")
	tag := createTag(t, db, "Dinner", "dinner")
	flour := createIngredient(t, db, "flour", "g")
	recipe := createRecipe(t, db, author, "Cake", tag, line(flour, 300))

	ctx := context.Background()

	// favoriting your own recipe is fine, so is carting it
	_, err := svc.AddCartEntry(ctx, author.ID, recipe.ID)
	require.NoError(t, err)

	_, err = svc.AddCartEntry(ctx, author.ID, recipe.ID)
	var conflict *service.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "recipe is already in the shopping cart", conflict.Message)

	require.NoError(t, svc.RemoveCartEntry(ctx, author.ID, recipe.ID))
	assert.ErrorIs(t, svc.RemoveCartEntry(ctx, author.ID, recipe.ID), service.ErrNotFound)
}

func TestMembershipUnknownRecipe(t *testing.T) {
	db := testdb.Setup(t)
	svc := service.NewMembershipService(db)
	fan := createUser(t, db, "fan")

	_, err := svc.AddFavorite(context.Background(), fan.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.AddCartEntry(context.Background(), fan.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestFollow(t *testing.T) {
	db := testdb.Setup(t)
	svc := service.NewMembershipService(db)
	reader := createUser(t, db, "reader")
	author := createUser(t, db, "author")

	ctx := context.Background()

	got, err := svc.Follow(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, got.ID)

	following, err := svc.IsFollowing(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, following)

	// follow is directional
	following, err = svc.IsFollowing(ctx, author.ID, reader.ID)
	require.NoError(t, err)
	assert.False(t, following)

	_, err = svc.Follow(ctx, reader.ID, author.ID)
	var conflict *service.ConflictError
	require.ErrorAs(t, err, &conflict)

	require.NoError(t, svc.Unfollow(ctx, reader.ID, author.ID))
	assert.ErrorIs(t, svc.Unfollow(ctx, reader.ID, author.ID), service.ErrNotFound)
}

func TestFollowSelfRejected(t *testing.T) {
	db := testdb.Setup(t)
	svc := service.NewMembershipService(db)
	user := createUser(t, db, "narcissist")

	_, err := svc.Follow(context.Background(), user.ID, user.ID)
	assert.ErrorIs(t, err, service.ErrSelfFollow)
}

func TestFollowUnknownAuthor(t *testing.T) {
	db := testdb.Setup(t)
	svc := service.NewMembershipService(db)
	reader := createUser(t, db, "reader")

	_, err := svc.Follow(context.Background(), reader.ID, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
