package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/heritage-nest/server/internal/apperrors"
	"github.com/heritage-nest/server/internal/repository"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newAuthService(users repository.UserStore) *AuthService {
	return NewAuthService(users, testSecret, time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserStore()
	service := newAuthService(users)

	err := service.Register(ctx, "Alice", "alice@example.com", "password123", "0123456789")
	require.NoError(t, err)

	stored, err := users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "Alice", stored.Name)
	require.Equal(t, "user", stored.Role)
	require.NotEqual(t, "password123", stored.Password, "password must be stored hashed")
	require.True(t, VerifyPassword("password123", stored.Password))
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserStore()
	service := newAuthService(users)

	require.NoError(t, service.Register(ctx, "Alice", "alice@example.com", "password123", "0123456789"))

	err := service.Register(ctx, "Mallory", "alice@example.com", "otherpass", "0987654321")
	require.ErrorIs(t, err, apperrors.ErrDuplicateAccount)

	// The existing record must be untouched.
	stored, err := users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, "Alice", stored.Name)
	require.True(t, VerifyPassword("password123", stored.Password))
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserStore()
	service := newAuthService(users)

	require.NoError(t, service.Register(ctx, "Alice", "alice@example.com", "password123", "0123456789"))

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "valid_credentials", email: "alice@example.com", password: "password123"},
		{name: "wrong_password", email: "alice@example.com", password: "nope", wantErr: apperrors.ErrInvalidCredentials},
		{name: "unknown_email", email: "bob@example.com", password: "password123", wantErr: apperrors.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := service.Login(ctx, tt.email, tt.password)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Empty(t, token)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, token)
		})
	}
}

func TestAuthService_TokenSubjectIsEmail(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMemoryUserStore()
	service := newAuthService(users)

	require.NoError(t, service.Register(ctx, "Alice", "alice@example.com", "password123", "0123456789"))

	tokenString, err := service.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)
	require.Equal(t, "alice@example.com", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}
