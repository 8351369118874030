package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/foodgram-app/backend/internal/middleware"
	"github.com/foodgram-app/backend/internal/service"
)

// respondError maps service errors onto HTTP statuses. Validation errors are
// returned itemized per field.
func respondError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": verr.Fields})
		return
	}
	var cerr *service.ConflictError
	if errors.As(err, &cerr) {
		c.JSON(http.StatusConflict, gin.H{"error": cerr.Message})
		return
	}
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSelfFollow):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// currentUserID reads the authenticated user id that AuthMiddleware stored.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// optionalUserID resolves the caller on public endpoints where a token may
// or may not be presented. An invalid token is treated as anonymous.
func optionalUserID(c *gin.Context, validator middleware.TokenValidator) (uuid.UUID, bool) {
	if id, ok := currentUserID(c); ok {
		return id, true
	}
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return uuid.Nil, false
	}
	claims, err := validator.ValidateToken(parts[1])
	if err != nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}
