package service

import (
	"context"
	"testing"
	"time"

	"github.com/catprepedge/catprep-backend/internal/config"
	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
}

func testUser() *model.User {
	return &model.User{
		ID:       uuid.New(),
		FullName: "Asha Rao",
		Email:    "asha@example.com",
		Role:     model.RolePremium,
	}
}

func TestAuthService_PasswordRoundTrip(t *testing.T) {
	svc := NewAuthService(testConfig(), nil)

	hash, err := svc.HashPassword("hunter22")
	require.NoError(t, err)
	assert.NoError(t, svc.CheckPassword(hash, "hunter22"))
	assert.ErrorIs(t, svc.CheckPassword(hash, "wrong"), ErrInvalidCredentials)
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	svc := NewAuthService(testConfig(), nil)
	user := testUser()

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, model.RolePremium, claims.Role)
	assert.NotEmpty(t, claims.ID)

	id, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	// Without Redis, revocation is a no-op.
	assert.NoError(t, svc.Revoke(context.Background(), claims))
	assert.NoError(t, svc.CheckNotRevoked(context.Background(), claims))
}

func TestAuthService_RejectsBadTokens(t *testing.T) {
	cfg := testConfig()
	svc := NewAuthService(cfg, nil)
	user := testUser()

	t.Run("wrong secret", func(t *testing.T) {
		other := testConfig()
		other.JWTSecret = "another-secret"
		token, err := NewAuthService(other, nil).GenerateToken(user)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		claims := Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
			UserID: user.ID.String(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.jwt")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestProfile(t *testing.T) {
	user := testUser()
	user.PasswordHash = "secret-hash"
	user.CreatedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	p, err := Profile(user)
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.ID)
	assert.Equal(t, user.FullName, p.FullName)
	assert.Equal(t, user.Role, p.Role)
	assert.Equal(t, user.CreatedAt, p.CreatedAt)

	_, err = Profile(nil)
	assert.ErrorIs(t, err, ErrUserRequired)
}
