package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram-app/backend/internal/middleware"
	"github.com/foodgram-app/backend/internal/models"
	"github.com/foodgram-app/backend/internal/service"
)

type RecipeHandler struct {
	recipeService       *service.RecipeService
	membershipService   *service.MembershipService
	shoppingListService *service.ShoppingListService
	userService         *service.UserService
	authService         *service.AuthService
	imageService        *service.ImageService
	creationLimiter     *middleware.RateLimiter
	modificationLimiter *middleware.RateLimiter
}

func NewRecipeHandler(
	recipeService *service.RecipeService,
	membershipService *service.MembershipService,
	shoppingListService *service.ShoppingListService,
	userService *service.UserService,
	authService *service.AuthService,
	imageService *service.ImageService,
	creationLimiter *middleware.RateLimiter,
	modificationLimiter *middleware.RateLimiter,
) *RecipeHandler {
	return &RecipeHandler{
		recipeService:       recipeService,
		membershipService:   membershipService,
		shoppingListService: shoppingListService,
		userService:         userService,
		authService:         authService,
		imageService:        imageService,
		creationLimiter:     creationLimiter,
		modificationLimiter: modificationLimiter,
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/download_shopping_cart", auth, h.DownloadShoppingCart)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", auth, limiterOrPass(h.creationLimiter), h.CreateRecipe)
		recipes.PUT("/:id", auth, limiterOrPass(h.modificationLimiter), h.UpdateRecipe)
		recipes.DELETE("/:id", auth, h.DeleteRecipe)
		recipes.POST("/:id/favorite", auth, h.AddFavorite)
		recipes.DELETE("/:id/favorite", auth, h.RemoveFavorite)
		recipes.POST("/:id/shopping_cart", auth, h.AddCartEntry)
		recipes.DELETE("/:id/shopping_cart", auth, h.RemoveCartEntry)
	}
}

// limiterOrPass resolves an optional rate limiter to a middleware; the API
// runs without rate limiting when Redis is unavailable.
func limiterOrPass(limiter *middleware.RateLimiter) gin.HandlerFunc {
	if limiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return limiter.RateLimitMiddleware()
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	page, limit := parsePagination(c)
	filter := service.RecipeFilter{Page: page, Limit: limit}

	if author := c.Query("author"); author != "" {
		authorID, err := uuid.Parse(author)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid author id"})
			return
		}
		filter.AuthorID = &authorID
	}
	if slugs := c.QueryArray("tags"); len(slugs) > 0 {
		filter.TagSlugs = slugs
	}
	filter.Favorited = isTruthy(c.Query("is_favorited"))
	filter.InCart = isTruthy(c.Query("is_in_shopping_cart"))

	var rel *service.UserRelations
	var followed map[uuid.UUID]bool
	if userID, ok := optionalUserID(c, h.authService); ok {
		filter.UserID = &userID
		rel, _ = h.recipeService.RelationsFor(c.Request.Context(), userID)
		followed, _ = h.userService.FollowedAuthors(c.Request.Context(), userID)
	}

	recipes, total, err := h.recipeService.ListRecipes(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		results = append(results, toRecipeResponse(&recipes[i], rel, followed))
	}
	c.JSON(http.StatusOK, buildPage(c, total, page, limit, results))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := h.recipeService.GetRecipe(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	var rel *service.UserRelations
	var followed map[uuid.UUID]bool
	if userID, ok := optionalUserID(c, h.authService); ok {
		rel, _ = h.recipeService.RelationsFor(c.Request.Context(), userID)
		followed, _ = h.userService.FollowedAuthors(c.Request.Context(), userID)
	}
	c.JSON(http.StatusOK, toRecipeResponse(recipe, rel, followed))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input, err := h.buildInput(c, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	rel, _ := h.recipeService.RelationsFor(c.Request.Context(), userID)
	c.JSON(http.StatusCreated, toRecipeResponse(recipe, rel, nil))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input, err := h.buildInput(c, &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), userID, recipeID, input)
	if err != nil {
		respondError(c, err)
		return
	}

	rel, _ := h.recipeService.RelationsFor(c.Request.Context(), userID)
	c.JSON(http.StatusOK, toRecipeResponse(recipe, rel, nil))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), userID, recipeID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// buildInput converts the request DTO, uploading the image when one was
// submitted and storage is configured.
func (h *RecipeHandler) buildInput(c *gin.Context, req *RecipeRequest) (*service.RecipeInput, error) {
	input := &service.RecipeInput{
		Name:        req.Name,
		Text:        req.Text,
		CookingTime: req.CookingTime,
		TagIDs:      req.Tags,
	}
	for _, line := range req.Ingredients {
		input.Ingredients = append(input.Ingredients, service.IngredientLineInput{
			IngredientID: line.ID,
			Amount:       line.Amount,
		})
	}

	if req.Image != "" {
		if strings.HasPrefix(req.Image, "http://") || strings.HasPrefix(req.Image, "https://") {
			input.ImageURL = req.Image
		} else if h.imageService != nil {
			data, contentType, err := service.DecodeBase64Image(req.Image)
			if err != nil {
				return nil, err
			}
			url, err := h.imageService.UploadRecipeImage(c.Request.Context(), data, contentType)
			if err != nil {
				return nil, fmt.Errorf("failed to store image: %w", err)
			}
			input.ImageURL = url
		}
	}
	return input, nil
}

func (h *RecipeHandler) AddFavorite(c *gin.Context) {
	h.addMembership(c, h.membershipService.AddFavorite)
}

func (h *RecipeHandler) RemoveFavorite(c *gin.Context) {
	h.removeMembership(c, h.membershipService.RemoveFavorite)
}

func (h *RecipeHandler) AddCartEntry(c *gin.Context) {
	h.addMembership(c, h.membershipService.AddCartEntry)
}

func (h *RecipeHandler) RemoveCartEntry(c *gin.Context) {
	h.removeMembership(c, h.membershipService.RemoveCartEntry)
}

// addMembership and removeMembership share the toggle plumbing; the service
// method passed in decides which join table is touched.
func (h *RecipeHandler) addMembership(c *gin.Context, add func(ctx context.Context, userID, recipeID uuid.UUID) (*models.Recipe, error)) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	recipe, err := add(c.Request.Context(), userID, recipeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRecipeSummary(recipe))
}

func (h *RecipeHandler) removeMembership(c *gin.Context, remove func(ctx context.Context, userID, recipeID uuid.UUID) error) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	recipeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe id"})
		return
	}

	if err := remove(c.Request.Context(), userID, recipeID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RecipeHandler) DownloadShoppingCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	items, err := h.shoppingListService.Aggregate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	doc := service.RenderShoppingList(items)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}

func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}
