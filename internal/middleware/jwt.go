package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/catprepedge/catprep-backend/internal/response"
	"github.com/catprepedge/catprep-backend/internal/service"
	"github.com/gin-gonic/gin"
)

const (
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"

	// SessionCookie is the name of the httpOnly cookie carrying the session token.
	SessionCookie = "session"
)

var errNoToken = errors.New("no session token")

// RequireAuth validates the session token and rejects anonymous requests.
// The token is read from the Authorization header, the session cookie, or
// the ?token query param (WebSocket upgrades cannot send headers).
func RequireAuth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := extractAndValidateClaims(c, authService)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, authErrCode(err))
			return
		}

		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when a valid token is present and otherwise
// lets the request through as anonymous.
func OptionalAuth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := extractAndValidateClaims(c, authService); err == nil {
			c.Set(ContextKeyClaims, claims)
		}
		c.Next()
	}
}

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

// TokenFromRequest returns the raw session token of the request, if any.
func TokenFromRequest(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
	}

	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}

	return c.Query("token")
}

func extractAndValidateClaims(c *gin.Context, authService *service.AuthService) (*service.Claims, error) {
	tokenStr := TokenFromRequest(c)
	if tokenStr == "" {
		return nil, errNoToken
	}

	claims, err := authService.ValidateToken(tokenStr)
	if err != nil {
		return nil, err
	}
	if err := authService.CheckNotRevoked(c.Request.Context(), claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func authErrCode(err error) response.ErrCode {
	switch {
	case errors.Is(err, errNoToken):
		return response.ErrTokenRequired
	case errors.Is(err, service.ErrTokenExpired):
		return response.ErrTokenExpired
	case errors.Is(err, service.ErrTokenRevoked):
		return response.ErrTokenRevoked
	default:
		return response.ErrTokenInvalid
	}
}
