package models_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodgram-app/backend/internal/models"
	"github.com/foodgram-app/backend/internal/testdb"
)

func TestBeforeCreateAssignsID(t *testing.T) {
	db := testdb.Setup(t)

	user := &models.User{
		Email:        "a@example.com",
		Username:     "a",
		FirstName:    "A",
		LastName:     "A",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	assert.NotEqual(t, uuid.Nil, user.ID)

	// a pre-assigned id is kept
	fixed := uuid.New()
	tag := &models.Tag{ID: fixed, Name: "Lunch", Color: "#49B64E", Slug: "lunch"}
	require.NoError(t, db.Create(tag).Error)
	assert.Equal(t, fixed, tag.ID)
}

func TestUniquePairConstraints(t *testing.T) {
	db := testdb.Setup(t)

	user := &models.User{Email: "a@example.com", Username: "a", FirstName: "A", LastName: "A", PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	recipe := &models.Recipe{AuthorID: user.ID, Name: "Cake", Text: "Bake.", CookingTime: 30}
	require.NoError(t, db.Create(recipe).Error)

	require.NoError(t, db.Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error)
	err := db.Create(&models.Favorite{UserID: user.ID, RecipeID: recipe.ID}).Error
	assert.Error(t, err, "duplicate favorite pair must be rejected by the schema")

	require.NoError(t, db.Create(&models.CartEntry{UserID: user.ID, RecipeID: recipe.ID}).Error)
	err = db.Create(&models.CartEntry{UserID: user.ID, RecipeID: recipe.ID}).Error
	assert.Error(t, err)
}

func TestIngredientNameUnitUniqueness(t *testing.T) {
	db := testdb.Setup(t)

	require.NoError(t, db.Create(&models.Ingredient{Name: "ginger", MeasurementUnit: "g"}).Error)

	// same name with a different unit is a distinct ingredient
	require.NoError(t, db.Create(&models.Ingredient{Name: "ginger", MeasurementUnit: "pc"}).Error)

	err := db.Create(&models.Ingredient{Name: "ginger", MeasurementUnit: "g"}).Error
	assert.Error(t, err)
}
