package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/models"
)

// MembershipService implements the favorite / cart / follow toggles. All
// three are the same existence-guarded insert and delete, parametrized by
// the join record and its conflict message; the storage layer's unique
// indexes serialize concurrent adds, and the race loser gets the conflict.
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

func (s *MembershipService) AddFavorite(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	record := &models.Favorite{UserID: userID, RecipeID: recipeID}
	return s.addRecipeLink(ctx, record, userID, recipeID, "recipe is already in favorites")
}

func (s *MembershipService) RemoveFavorite(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.removeRecipeLink(ctx, &models.Favorite{}, userID, recipeID)
}

func (s *MembershipService) AddCartEntry(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error) {
	record := &models.CartEntry{UserID: userID, RecipeID: recipeID}
	return s.addRecipeLink(ctx, record, userID, recipeID, "recipe is already in the shopping cart")
}

func (s *MembershipService) RemoveCartEntry(ctx context.Context, userID, recipeID uuid.UUID) error {
	return s.removeRecipeLink(ctx, &models.CartEntry{}, userID, recipeID)
}

// addRecipeLink inserts a (user, recipe) join record after checking that the
// recipe exists and the pair does not. Returns the target recipe.
func (s *MembershipService) addRecipeLink(ctx context.Context, record interface{}, userID, recipeID uuid.UUID, conflictMsg string) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(record).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &ConflictError{Message: conflictMsg}
	}

	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, &ConflictError{Message: conflictMsg}
		}
		return nil, err
	}
	return &recipe, nil
}

// removeRecipeLink deletes a (user, recipe) join record; a missing record is
// ErrNotFound, not a silent no-op.
func (s *MembershipService) removeRecipeLink(ctx context.Context, record interface{}, userID, recipeID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Follow subscribes a user to an author's recipes.
func (s *MembershipService) Follow(ctx context.Context, userID, authorID uuid.UUID) (*models.User, error) {
	if userID == authorID {
		return nil, ErrSelfFollow
	}

	var author models.User
	if err := s.db.WithContext(ctx).First(&author, "id = ?", authorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &ConflictError{Message: "you are already subscribed to this author"}
	}

	follow := models.Follow{UserID: userID, AuthorID: authorID}
	if err := s.db.WithContext(ctx).Create(&follow).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, &ConflictError{Message: "you are already subscribed to this author"}
		}
		return nil, err
	}
	return &author, nil
}

// Unfollow removes a subscription; a missing one is ErrNotFound.
func (s *MembershipService) Unfollow(ctx context.Context, userID, authorID uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsFollowing reports whether user is subscribed to author.
func (s *MembershipService) IsFollowing(ctx context.Context, userID, authorID uuid.UUID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&count).Error
	return count > 0, err
}
