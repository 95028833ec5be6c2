// server/internal/api/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"garden-application-api-server/internal/auth"

	"github.com/gin-gonic/gin"
)

// Context keys set by Authenticate and OptionalAuthenticate.
const (
	UserIDKey          = "user_id"
	UserEmailKey       = "user_email"
	UserDisplayNameKey = "user_display_name"
)

// Authenticate verifies the bearer JWT.
// It rejects requests without a valid bearer token and puts the caller's
// identity into the context.
func Authenticate(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := issuer.Parse(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		setUser(c, claims)
		c.Next()
	}
}

// OptionalAuthenticate identifies the caller when a valid bearer token is
// present and lets anonymous requests through otherwise.
func OptionalAuthenticate(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if ok {
			if claims, err := issuer.Parse(tokenString); err == nil {
				setUser(c, claims)
			}
		}
		c.Next()
	}
}

// UserID returns the authenticated caller's uid, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func setUser(c *gin.Context, claims *auth.Claims) {
	c.Set(UserIDKey, claims.UID)
	c.Set(UserEmailKey, claims.Email)
	c.Set(UserDisplayNameKey, claims.DisplayName)
}
