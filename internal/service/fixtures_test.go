package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/models"
	"github.com/foodgram-app/backend/internal/service"
)

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "irrelevant",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTag(t *testing.T, db *gorm.DB, name, slug string) *models.Tag {
	t.Helper()
	tag := &models.Tag{
		Name:  name,
		Color: fmt.Sprintf("#%06X", len(name)*131071%0xFFFFFF),
		Slug:  slug,
	}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func createIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

func createRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, tag *models.Tag, lines ...service.IngredientLineInput) *models.Recipe {
	t.Helper()
	svc := service.NewRecipeService(db)
	recipe, err := svc.CreateRecipe(context.Background(), author.ID, &service.RecipeInput{
		Name:        name,
		Text:        "Bake until done.",
		CookingTime: 30,
		TagIDs:      []uuid.UUID{tag.ID},
		Ingredients: lines,
	})
	require.NoError(t, err)
	return recipe
}

func line(ingredient *models.Ingredient, amount int) service.IngredientLineInput {
	return service.IngredientLineInput{IngredientID: ingredient.ID, Amount: amount}
}
