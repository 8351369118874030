package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram-app/backend/internal/middleware"
	"github.com/foodgram-app/backend/internal/service"
)

type UserHandler struct {
	userService       *service.UserService
	membershipService *service.MembershipService
	authService       *service.AuthService
}

func NewUserHandler(userService *service.UserService, membershipService *service.MembershipService, authService *service.AuthService) *UserHandler {
	return &UserHandler{
		userService:       userService,
		membershipService: membershipService,
		authService:       authService,
	}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/me", middleware.AuthMiddleware(h.authService), h.Me)
		users.GET("/subscriptions", middleware.AuthMiddleware(h.authService), h.Subscriptions)
		users.GET("/:id", h.GetUser)
		users.POST("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Subscribe)
		users.DELETE("/:id/subscribe", middleware.AuthMiddleware(h.authService), h.Unsubscribe)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, limit := parsePagination(c)
	users, total, err := h.userService.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	followed := h.followedSetFor(c)
	results := make([]UserResponse, 0, len(users))
	for i := range users {
		results = append(results, toUserResponse(&users[i], followed))
	}
	c.JSON(http.StatusOK, buildPage(c, total, page, limit, results))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user, h.followedSetFor(c)))
}

func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user, nil))
}

func (h *UserHandler) Subscriptions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	page, limit := parsePagination(c)
	authors, total, err := h.userService.Subscriptions(c.Request.Context(), userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]SubscriptionResponse, 0, len(authors))
	for i := range authors {
		author := &authors[i]
		entry := SubscriptionResponse{
			UserResponse: toUserResponse(author, nil),
			Recipes:      make([]RecipeSummary, 0, len(author.Recipes)),
			RecipesCount: len(author.Recipes),
		}
		entry.IsSubscribed = true
		for j := range author.Recipes {
			entry.Recipes = append(entry.Recipes, toRecipeSummary(&author.Recipes[j]))
		}
		results = append(results, entry)
	}
	c.JSON(http.StatusOK, buildPage(c, total, page, limit, results))
}

func (h *UserHandler) Subscribe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	author, err := h.membershipService.Follow(c.Request.Context(), userID, authorID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := toUserResponse(author, nil)
	resp.IsSubscribed = true
	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Unsubscribe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	authorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.membershipService.Unfollow(c.Request.Context(), userID, authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// followedSetFor resolves the caller's followed-author set when a token was
// presented on an otherwise public endpoint; anonymous callers get nil.
func (h *UserHandler) followedSetFor(c *gin.Context) map[uuid.UUID]bool {
	userID, ok := optionalUserID(c, h.authService)
	if !ok {
		return nil
	}
	followed, err := h.userService.FollowedAuthors(c.Request.Context(), userID)
	if err != nil {
		return nil
	}
	return followed
}
