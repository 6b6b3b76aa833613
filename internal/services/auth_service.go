package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/heritage-nest/server/internal/apperrors"
	"github.com/heritage-nest/server/internal/models"
	"github.com/heritage-nest/server/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration and login against the credential store.
type AuthService struct {
	users     repository.UserStore
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAuthService(users repository.UserStore, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{users: users, jwtSecret: jwtSecret, jwtExpiry: jwtExpiry}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// VerifyPassword compares a plain password with a hashed password
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Register creates a new account. Uniqueness is enforced by the store's
// unique email index, so a concurrent duplicate can never slip through a
// stale existence check.
func (s *AuthService) Register(ctx context.Context, name, email, password, phone string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}

	user := models.User{
		Name:      name,
		Email:     email,
		Phone:     phone,
		Password:  hashedPassword,
		Role:      "user",
		CreatedAt: time.Now().UTC(),
	}
	return s.users.Insert(ctx, user)
}

// Login authenticates a user and returns a signed token with the email as
// its subject. A missing user and a wrong password produce the same error
// so the response never reveals which emails are registered.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return "", apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if !VerifyPassword(password, user.Password) {
		return "", apperrors.ErrInvalidCredentials
	}

	return s.generateToken(user.Email)
}

func (s *AuthService) generateToken(email string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
