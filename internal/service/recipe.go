package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/models"
)

// RecipeService handles the recipe write path and filtered listings.
type RecipeService struct {
	db *gorm.DB
}

func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

// IngredientLineInput is one submitted (ingredient, amount) pair.
type IngredientLineInput struct {
	IngredientID uuid.UUID
	Amount       int
}

// RecipeInput holds the writable fields of a recipe.
type RecipeInput struct {
	Name        string
	Text        string
	ImageURL    string
	CookingTime int
	TagIDs      []uuid.UUID
	Ingredients []IngredientLineInput
}

// RecipeFilter narrows a listing. Favorited and InCart filter by the
// caller's own rows and therefore require UserID to be set.
type RecipeFilter struct {
	AuthorID  *uuid.UUID
	TagSlugs  []string
	Favorited bool
	InCart    bool
	UserID    *uuid.UUID
	Page      int
	Limit     int
}

// validate checks the submission against every invariant and collects all
// violations before anything is written. On success it returns the resolved
// tags in submission order.
func (s *RecipeService) validate(in *RecipeInput) ([]models.Tag, *ValidationError) {
	verr := NewValidationError()

	if strings.TrimSpace(in.Name) == "" {
		verr.Add("name", "name is required")
	}
	if strings.TrimSpace(in.Text) == "" {
		verr.Add("text", "text is required")
	}
	if in.CookingTime < 1 {
		verr.Add("cooking_time", "cooking time must be at least 1")
	}

	var tags []models.Tag
	if len(in.TagIDs) == 0 {
		verr.Add("tags", "at least one tag is required")
	}
	seenTags := make(map[uuid.UUID]bool, len(in.TagIDs))
	for _, tagID := range in.TagIDs {
		var tag models.Tag
		if err := s.db.First(&tag, "id = ?", tagID).Error; err != nil {
			verr.Add("tags", fmt.Sprintf("tag %s does not exist", tagID))
			continue
		}
		if seenTags[tagID] {
			verr.Add("tags", fmt.Sprintf("tag %s is already added", tag.Name))
			continue
		}
		seenTags[tagID] = true
		tags = append(tags, tag)
	}

	if len(in.Ingredients) == 0 {
		verr.Add("ingredients", "a recipe cannot be without ingredients")
	}
	seenIngredients := make(map[uuid.UUID]bool, len(in.Ingredients))
	for _, line := range in.Ingredients {
		var ingredient models.Ingredient
		if err := s.db.First(&ingredient, "id = ?", line.IngredientID).Error; err != nil {
			verr.Add("ingredients", fmt.Sprintf("ingredient %s does not exist", line.IngredientID))
			continue
		}
		if seenIngredients[line.IngredientID] {
			verr.Add("ingredients", fmt.Sprintf("ingredient %s is already added", ingredient.Name))
			continue
		}
		seenIngredients[line.IngredientID] = true
		if line.Amount < 1 {
			verr.Add("amount", fmt.Sprintf("ingredient %s: amount must be at least 1", ingredient.Name))
		}
	}

	if verr.HasErrors() {
		return nil, verr
	}
	return tags, nil
}

// CreateRecipe validates the submission and writes the recipe, its tag set
// and its ingredient lines in one transaction.
func (s *RecipeService) CreateRecipe(ctx context.Context, authorID uuid.UUID, in *RecipeInput) (*models.Recipe, error) {
	tags, verr := s.validate(in)
	if verr != nil {
		return nil, verr
	}

	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		ImageURL:    in.ImageURL,
		CookingTime: in.CookingTime,
		Tags:        tags,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&recipe).Error; err != nil {
			return err
		}
		return s.writeIngredientLines(tx, recipe.ID, in.Ingredients)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipe(ctx, recipe.ID)
}

// UpdateRecipe replaces the recipe's fields and fully rewrites its tag and
// ingredient-line sets. Only the author may update.
func (s *RecipeService) UpdateRecipe(ctx context.Context, userID, recipeID uuid.UUID, in *RecipeInput) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, ErrForbidden
	}

	tags, verr := s.validate(in)
	if verr != nil {
		return nil, verr
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"name":         in.Name,
			"text":         in.Text,
			"cooking_time": in.CookingTime,
		}
		if in.ImageURL != "" {
			updates["image_url"] = in.ImageURL
		}
		if err := tx.Model(&recipe).Updates(updates).Error; err != nil {
			return err
		}
		// clear-then-rewrite: no diffing of the previous sets
		if err := tx.Model(&recipe).Association("Tags").Replace(tags); err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		return s.writeIngredientLines(tx, recipe.ID, in.Ingredients)
	})
	if err != nil {
		return nil, err
	}
	return s.GetRecipe(ctx, recipe.ID)
}

func (s *RecipeService) writeIngredientLines(tx *gorm.DB, recipeID uuid.UUID, lines []IngredientLineInput) error {
	records := make([]models.RecipeIngredient, 0, len(lines))
	for _, line := range lines {
		records = append(records, models.RecipeIngredient{
			RecipeID:     recipeID,
			IngredientID: line.IngredientID,
			Amount:       line.Amount,
		})
	}
	return tx.Create(&records).Error
}

// DeleteRecipe removes a recipe together with its lines, tag links,
// favorites and cart entries. Only the author may delete.
func (s *RecipeService) DeleteRecipe(ctx context.Context, userID, recipeID uuid.UUID) error {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if recipe.AuthorID != userID {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.CartEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&recipe).Error
	})
}

// GetRecipe retrieves a recipe with its author, tags and ingredient lines.
func (s *RecipeService) GetRecipe(ctx context.Context, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		First(&recipe, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// ListRecipes returns a page of recipes, newest first, and the total count
// of rows matching the filter.
func (s *RecipeService) ListRecipes(ctx context.Context, filter RecipeFilter) ([]models.Recipe, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Recipe{})

	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}
	if len(filter.TagSlugs) > 0 {
		query = query.Where("recipes.id IN (?)",
			s.db.Table("recipe_tags").
				Select("recipe_tags.recipe_id").
				Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
				Where("tags.slug IN ?", filter.TagSlugs))
	}
	if filter.Favorited {
		if filter.UserID == nil {
			return nil, 0, ErrUnauthorized
		}
		query = query.Where("recipes.id IN (?)",
			s.db.Table("favorites").Select("recipe_id").Where("user_id = ?", *filter.UserID))
	}
	if filter.InCart {
		if filter.UserID == nil {
			return nil, 0, ErrUnauthorized
		}
		query = query.Where("recipes.id IN (?)",
			s.db.Table("cart_entries").Select("recipe_id").Where("user_id = ?", *filter.UserID))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 6
	}

	var recipes []models.Recipe
	err := query.
		Preload("Author").
		Preload("Tags").
		Preload("Ingredients.Ingredient").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// UserRelations holds the recipe-id sets a user has favorited or carted,
// used to mark is_favorited / is_in_shopping_cart on responses.
type UserRelations struct {
	Favorited map[uuid.UUID]bool
	InCart    map[uuid.UUID]bool
}

// RelationsFor loads the favorite and cart recipe-id sets for a user.
func (s *RecipeService) RelationsFor(ctx context.Context, userID uuid.UUID) (*UserRelations, error) {
	rel := &UserRelations{
		Favorited: make(map[uuid.UUID]bool),
		InCart:    make(map[uuid.UUID]bool),
	}

	var favoriteIDs []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ?", userID).Pluck("recipe_id", &favoriteIDs).Error; err != nil {
		return nil, err
	}
	for _, id := range favoriteIDs {
		rel.Favorited[id] = true
	}

	var cartIDs []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.CartEntry{}).
		Where("user_id = ?", userID).Pluck("recipe_id", &cartIDs).Error; err != nil {
		return nil, err
	}
	for _, id := range cartIDs {
		rel.InCart[id] = true
	}
	return rel, nil
}
