package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram-app/backend/internal/service"
	"github.com/foodgram-app/backend/internal/testdb"
)

func TestAggregateSumsAcrossRecipes(t *testing.T) {
	db := testdb.Setup(t)
	svc := service.NewShoppingListService(db)
	membership := service.NewMembershipService(db)
	author := createUser(t, db, "author")
	shopper := createUser(t, db, "shopper")
	tag := createTag(t, db, "Dinner", "dinner")
	flour := createIngredient(t, db, "flour", "g")
	sugar := createIngredient(t, db, "sugar", "g")

	cake := createRecipe(t, db, author, "Cake", tag, line(flour, 200), line(sugar, 50))
	bread := createRecipe(t, db, author, "Bread", tag, line(flour, 100))

	ctx := context.Background()
	_, err := membership.AddCartEntry(ctx, shopper.ID, cake.ID)
	require.NoError(t, err)
	_, err = membership.AddCartEntry(ctx, shopper.ID, bread.ID)
	require.NoError(t, err)

	items, err := svc.Aggregate(ctx, shopper.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "flour", items[0].Name)
	assert.EqualValues(t, 300, items[0].Total)
	assert.Equal(t, "sugar", items[1].Name)
	assert.EqualValues(t, 50, items[1].Total)
}

func TestAggregateKeepsUnitsSeparate(t *testing.T) {
	db := testdb.Setup(t)
	svc := service.NewShoppingListService(db)
	membership := service.NewMembershipService(db)
	author := createUser(t, db, "author")
	shopper := createUser(t, db, "shopper")
	tag := createTag(t, db, "Dinner", "dinner")
	gingerGrams := createIngredient(t, db, "ginger", "g")
	gingerPieces := createIngredient(t, db, "ginger", "pc")

	stirfry := createRecipe(t, db, author, "Stir-fry", tag, line(gingerGrams, 20), line(gingerPieces, 1))

	ctx := context.Background()
	_, err := membership.AddCartEntry(ctx, shopper.ID, stirfry.ID)
	require.NoError(t, err)

	items, err := svc.Aggregate(ctx, shopper.ID)
	require.NoError(t, err)
	require.Len(t, items, 2, "same name, different units stay distinct")
	assert.Equal(t, "g", items[0].MeasurementUnit)
	assert.Equal(t, "pc", items[1].MeasurementUnit)
}

func TestAggregateScopedToUser(t *testing.T) {
	db := testdb.Setup(t)
	svc := service.NewShoppingListService(db)
	membership := service.NewMembershipService(db)
	author := createUser(t, db, "author")
	shopper := createUser(t, db, "shopper")
	other := createUser(t, db, "other")
	tag := createTag(t, db, "Dinner", "dinner")
	flour := createIngredient(t, db, "flour", "g")

	cake := createRecipe(t, db, author, "Cake", tag, line(flour, 200))

	ctx := context.Background()
	_, err := membership.AddCartEntry(ctx, other.ID, cake.ID)
	require.NoError(t, err)

	items, err := svc.Aggregate(ctx, shopper.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestRenderShoppingList(t *testing.T) {
	doc := service.RenderShoppingList([]service.ShoppingListItem{
		{Name: "flour", MeasurementUnit: "g", Total: 300},
		{Name: "sugar", MeasurementUnit: "g", Total: 50},
	})

	assert.Equal(t, "Ingredient list:\n\n1. flour (g) - 300\n2. sugar (g) - 50\n", string(doc.Content))
	assert.Equal(t, "text/plain; charset=utf-8", doc.ContentType)
	assert.Equal(t, "shopping_list.txt", doc.Filename)
}

func TestRenderShoppingListEmptyCart(t *testing.T) {
	doc := service.RenderShoppingList(nil)
	assert.Equal(t, "Ingredient list:\n\n", string(doc.Content))
}
