// Package api wires the HTTP handlers for the recipe platform.
package api

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/config"
	"github.com/foodgram-app/backend/internal/middleware"
	"github.com/foodgram-app/backend/internal/service"
)

// SetupAPI registers all v1 routes on the router. The Redis client and the
// S3 configuration are optional: without Redis the write endpoints run
// unthrottled, without S3 recipe images are accepted as plain URLs only.
func SetupAPI(router *gin.Engine, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) error {
	authService := service.NewAuthService(db, cfg.JWTSecret)
	userService := service.NewUserService(db)
	recipeService := service.NewRecipeService(db)
	membershipService := service.NewMembershipService(db)
	shoppingListService := service.NewShoppingListService(db)

	var imageService *service.ImageService
	if os.Getenv("S3_BUCKET_NAME") != "" {
		s3cfg, err := config.NewS3Config(context.Background())
		if err != nil {
			return fmt.Errorf("failed to configure image storage: %w", err)
		}
		imageService = service.NewImageService(s3cfg)
	} else {
		log.Printf("S3_BUCKET_NAME not set, image uploads disabled")
	}

	var creationLimiter, modificationLimiter *middleware.RateLimiter
	if redisClient != nil {
		creationLimiter = middleware.NewRecipeCreationRateLimiter(redisClient)
		modificationLimiter = middleware.NewRecipeModificationRateLimiter(redisClient)
	} else {
		log.Printf("Redis unavailable, rate limiting disabled")
	}

	v1 := router.Group("/api/v1")
	{
		NewAuthHandler(authService).RegisterRoutes(v1)
		NewUserHandler(userService, membershipService, authService).RegisterRoutes(v1)
		NewTagHandler(db).RegisterRoutes(v1)
		NewIngredientHandler(db).RegisterRoutes(v1)
		NewRecipeHandler(
			recipeService,
			membershipService,
			shoppingListService,
			userService,
			authService,
			imageService,
			creationLimiter,
			modificationLimiter,
		).RegisterRoutes(v1)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return nil
}
