package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/models"
)

// UserService serves user listings and the subscriptions feed.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns a page of users ordered by signup time, newest first,
// plus the total count.
func (s *UserService) ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 6
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Subscriptions returns the authors the user follows, with their recipes
// preloaded for the feed, plus the total count.
func (s *UserService) Subscriptions(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.User, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.User{}).
		Where("users.id IN (?)",
			s.db.Table("follows").Select("author_id").Where("user_id = ?", userID))

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 6
	}

	var authors []models.User
	err := base.
		Preload("Recipes").
		Order("users.created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&authors).Error
	if err != nil {
		return nil, 0, err
	}
	return authors, total, nil
}

// FollowedAuthors returns the author-id set the user follows, used to mark
// is_subscribed on user responses.
func (s *UserService) FollowedAuthors(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("user_id = ?", userID).Pluck("author_id", &ids).Error; err != nil {
		return nil, err
	}
	followed := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		followed[id] = true
	}
	return followed, nil
}
