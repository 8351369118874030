package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShoppingListItem is one aggregated row: the total quantity of a distinct
// (ingredient name, unit) pair across all recipes in a user's cart.
type ShoppingListItem struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Total           int64  `json:"total"`
}

// ShoppingListDocument is a rendered list plus the metadata the HTTP layer
// needs to serve it as a download.
type ShoppingListDocument struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ShoppingListService aggregates cart recipes into a shopping list.
type ShoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) *ShoppingListService {
	return &ShoppingListService{db: db}
}

// Aggregate joins the user's cart entries to the ingredient lines of those
// recipes, groups by (name, unit) and sums quantities. Ordering by name then
// unit is deterministic; the renderer relies on it for stable numbering.
// An empty cart yields an empty list. Read-only.
func (s *ShoppingListService) Aggregate(ctx context.Context, userID uuid.UUID) ([]ShoppingListItem, error) {
	var items []ShoppingListItem
	err := s.db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS total").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN cart_entries ON cart_entries.recipe_id = recipe_ingredients.recipe_id").
		Where("cart_entries.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name ASC, ingredients.measurement_unit ASC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// RenderShoppingList formats aggregated rows as a plain-text attachment, one
// numbered entry per row in the order received. Totals are raw sums; no
// rounding or unit conversion happens here.
func RenderShoppingList(items []ShoppingListItem) *ShoppingListDocument {
	var buf bytes.Buffer
	buf.WriteString("Ingredient list:\n\n")
	for i, item := range items {
		fmt.Fprintf(&buf, "%d. %s (%s) - %d\n", i+1, item.Name, item.MeasurementUnit, item.Total)
	}
	return &ShoppingListDocument{
		Content:     buf.Bytes(),
		ContentType: "text/plain; charset=utf-8",
		Filename:    "shopping_list.txt",
	}
}
