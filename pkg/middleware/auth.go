package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lifeshield/lifeshield-api/internal/tokens"
)

// ClaimsKey is the gin context key under which verified claims are stored.
const ClaimsKey = "claims"

// Auth returns a middleware that verifies the Bearer token and stores its
// claims in the context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		raw, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		claims, err := tokens.Parse(secret, raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ClaimsKey, map[string]interface{}(claims))
		c.Next()
	}
}

// RequireAdmin allows the request only when the verified email matches the
// configured administrator address. Must run after Auth.
func RequireAdmin(adminEmail string) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := ""
		if v, ok := c.Get(ClaimsKey); ok {
			if cm, ok2 := v.(map[string]interface{}); ok2 {
				email, _ = cm["email"].(string)
			}
		}
		if email == "" || email != adminEmail {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: Admin only"})
			return
		}
		c.Next()
	}
}
