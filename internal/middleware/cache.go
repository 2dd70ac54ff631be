package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// CacheControl marks responses as publicly cacheable for maxAge. Extra
// directives such as "immutable" are appended as given.
func CacheControl(maxAge time.Duration, directives ...string) gin.HandlerFunc {
	parts := append([]string{"public", "max-age=" + strconv.Itoa(int(maxAge/time.Second))}, directives...)
	value := strings.Join(parts, ", ")
	return func(c *gin.Context) {
		c.Header("Cache-Control", value)
		c.Next()
	}
}

// NoStore keeps per-user responses out of shared and browser caches.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}
