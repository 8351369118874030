package service

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/foodgram-app/backend/internal/models"
	"github.com/foodgram-app/backend/internal/types"
)

// reservedUsernames cannot be registered regardless of case; "me" collides
// with the /users/me route.
var reservedUsernames = []string{"me", "admin"}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{
		db:        db,
		jwtSecret: jwtSecret,
	}
}

// RegisterInput holds the fields required to create an account.
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

// Register validates the signup fields, creates the user and returns a signed
// token. All field violations are collected before any write.
func (s *AuthService) Register(in RegisterInput) (*models.User, string, error) {
	verr := NewValidationError()

	username := strings.TrimSpace(in.Username)
	for _, reserved := range reservedUsernames {
		if strings.EqualFold(username, reserved) {
			verr.Add("username", "username \""+username+"\" is reserved")
		}
	}
	if username == "" || !usernamePattern.MatchString(username) {
		verr.Add("username", "username may only contain letters, digits and .@+-")
	}
	if len(in.Password) < 6 {
		verr.Add("password", "password must be at least 6 characters")
	}
	if strings.TrimSpace(in.FirstName) == "" {
		verr.Add("first_name", "first name is required")
	}
	if strings.TrimSpace(in.LastName) == "" {
		verr.Add("last_name", "last name is required")
	}

	var count int64
	if err := s.db.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
		return nil, "", err
	}
	if count > 0 {
		verr.Add("email", "a user with this email already exists")
	}
	if err := s.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, "", err
	}
	if count > 0 {
		verr.Add("username", "a user with this username already exists")
	}

	if verr.HasErrors() {
		return nil, "", verr
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := models.User{
		Email:        in.Email,
		Username:     username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hashed),
	}
	if err := s.db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, "", &ConflictError{Message: "a user with this email or username already exists"}
		}
		return nil, "", err
	}

	token, err := s.generateToken(&user)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Login verifies credentials and returns a signed token.
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, "", errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", errors.New("invalid credentials")
	}

	token, err := s.generateToken(&user)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID.String(),
		"username": user.Username,
		"exp":      time.Now().Add(time.Hour * 24).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ValidateToken parses and verifies a JWT and returns its claims.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userIDStr, ok := claims["user_id"].(string)
		if !ok {
			return nil, errors.New("invalid token claims")
		}
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			return nil, err
		}
		username, _ := claims["username"].(string)
		return &types.TokenClaims{
			UserID:   userID,
			Username: username,
		}, nil
	}

	return nil, errors.New("invalid token")
}
