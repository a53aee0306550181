package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/drishyamitra/drishyamitra/auth"
)

const contextUserID = "userID"

// AuthRequired returns a Gin middleware that enforces JWT authentication.
// The token comes from the Authorization header (Bearer) or the token cookie.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "UNAUTHORIZED",
			})
			return
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
				"code":  "INVALID_TOKEN",
			})
			return
		}

		c.Set(contextUserID, claims.UserID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie("token"); err == nil {
		return cookie
	}
	return ""
}

// currentUserID returns the authenticated user set by AuthRequired
func currentUserID(c *gin.Context) string {
	return c.GetString(contextUserID)
}
