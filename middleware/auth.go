package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stayhub/utils"
)

// CallerIDKey is the gin context key the authenticated customer ID is stored
// under.
const CallerIDKey = "callerID"

// CustomerAuthMiddleware validates the bearer token and stores the customer
// ID in the request context for handlers.
func CustomerAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		customerID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(CallerIDKey, customerID)
		c.Next()
	}
}

// CallerID returns the authenticated customer ID set by the auth middleware.
func CallerID(c *gin.Context) string {
	return c.GetString(CallerIDKey)
}
