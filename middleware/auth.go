package middleware

import (
	"context"
	"net/http"
	"strings"

	"medibook/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware.
const (
	CtxActorID = "actorID"
	CtxRole    = "actorRole"
)

// JWTAuth validates the bearer token, checks its hash against the auth
// cache (so revoked tokens die immediately), and requires the given role.
func JWTAuth(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "missing or malformed authorization header",
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		subject, role, err := utils.ExtractClaimsFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "invalid or expired token",
			})
			return
		}
		if role != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "insufficient permissions",
			})
			return
		}

		// Compare against the cached hash; a missing or different hash means
		// the token was revoked or superseded.
		cached, err := utils.GetAuthCacheClient().Get(context.Background(), utils.AuthCachePrefix+subject).Result()
		if err != nil || cached != utils.HashToken(tokenString) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "session expired, please sign in again",
			})
			return
		}

		c.Set(CtxActorID, subject)
		c.Set(CtxRole, role)
		c.Next()
	}
}
