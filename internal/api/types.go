package api

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram-app/backend/internal/models"
	"github.com/foodgram-app/backend/internal/service"
)

const defaultPageSize = 6

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse is the public view of a user. IsSubscribed reflects whether
// the caller follows this user.
type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	IsSubscribed bool      `json:"is_subscribed"`
}

func toUserResponse(u *models.User, followed map[uuid.UUID]bool) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: followed != nil && followed[u.ID],
	}
}

// RecipeSummary is the compact recipe view used in membership responses and
// the subscriptions feed.
type RecipeSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	CookingTime int       `json:"cooking_time"`
}

func toRecipeSummary(r *models.Recipe) RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Name:        r.Name,
		Image:       r.ImageURL,
		CookingTime: r.CookingTime,
	}
}

// SubscriptionResponse is an author in the subscriptions feed, with their
// recipes attached.
type SubscriptionResponse struct {
	UserResponse
	Recipes      []RecipeSummary `json:"recipes"`
	RecipesCount int             `json:"recipes_count"`
}

// IngredientLineRequest is one submitted ingredient line; ID refers to an
// Ingredient.
type IngredientLineRequest struct {
	ID     uuid.UUID `json:"id" binding:"required"`
	Amount int       `json:"amount"`
}

// RecipeRequest is the create/update payload. Image is an optional base64
// payload (data URI or bare).
type RecipeRequest struct {
	Name        string                  `json:"name" binding:"required"`
	Text        string                  `json:"text" binding:"required"`
	Image       string                  `json:"image"`
	CookingTime int                     `json:"cooking_time"`
	Tags        []uuid.UUID             `json:"tags"`
	Ingredients []IngredientLineRequest `json:"ingredients"`
}

type IngredientLineResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	MeasurementUnit string    `json:"measurement_unit"`
	Amount          int       `json:"amount"`
}

type RecipeResponse struct {
	ID               uuid.UUID                `json:"id"`
	Tags             []models.Tag             `json:"tags"`
	Author           UserResponse             `json:"author"`
	Ingredients      []IngredientLineResponse `json:"ingredients"`
	IsFavorited      bool                     `json:"is_favorited"`
	IsInShoppingCart bool                     `json:"is_in_shopping_cart"`
	Name             string                   `json:"name"`
	Image            string                   `json:"image"`
	Text             string                   `json:"text"`
	CookingTime      int                      `json:"cooking_time"`
	CreatedAt        time.Time                `json:"created_at"`
}

func toRecipeResponse(r *models.Recipe, rel *service.UserRelations, followed map[uuid.UUID]bool) RecipeResponse {
	resp := RecipeResponse{
		ID:          r.ID,
		Tags:        r.Tags,
		Name:        r.Name,
		Image:       r.ImageURL,
		Text:        r.Text,
		CookingTime: r.CookingTime,
		CreatedAt:   r.CreatedAt,
	}
	if r.Author != nil {
		resp.Author = toUserResponse(r.Author, followed)
	}
	if rel != nil {
		resp.IsFavorited = rel.Favorited[r.ID]
		resp.IsInShoppingCart = rel.InCart[r.ID]
	}
	resp.Ingredients = make([]IngredientLineResponse, 0, len(r.Ingredients))
	for _, line := range r.Ingredients {
		item := IngredientLineResponse{
			ID:     line.IngredientID,
			Amount: line.Amount,
		}
		if line.Ingredient != nil {
			item.Name = line.Ingredient.Name
			item.MeasurementUnit = line.Ingredient.MeasurementUnit
		}
		resp.Ingredients = append(resp.Ingredients, item)
	}
	return resp
}

// Page is the paginated listing envelope.
type Page struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit < 1 {
		limit = defaultPageSize
	}
	return page, limit
}

func buildPage(c *gin.Context, count int64, page, limit int, results interface{}) Page {
	p := Page{Count: count, Results: results}
	if int64(page*limit) < count {
		next := pageURL(c, page+1, limit)
		p.Next = &next
	}
	if page > 1 {
		prev := pageURL(c, page-1, limit)
		p.Previous = &prev
	}
	return p
}

func pageURL(c *gin.Context, page, limit int) string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()
	return fmt.Sprint(&u)
}
