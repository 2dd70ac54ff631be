package middleware

import (
	"net/http"

	"github.com/catprepedge/catprep-backend/internal/model"
	"github.com/catprepedge/catprep-backend/internal/response"
	"github.com/gin-gonic/gin"
)

// RequireRole checks that the authenticated user holds one of the given roles.
// Must run after RequireAuth.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, r := range roles {
			if claims.Role == r {
				c.Next()
				return
			}
		}

		code := response.ErrForbidden
		if len(roles) == 1 && roles[0] == model.RoleAdmin {
			code = response.ErrAdminAccessOnly
		}
		response.AbortFail(c, http.StatusForbidden, code)
	}
}

// RequirePremium lets through roles that can view premium content.
func RequirePremium() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}
		if !claims.Role.CanViewPremium() {
			response.AbortFail(c, http.StatusForbidden, response.ErrPremiumRequired)
			return
		}
		c.Next()
	}
}
