package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware authenticates the request. Password logins carry a JWT in a
// cookie or Authorization header; Google logins carry a DB-backed session
// cookie. Either credential is accepted.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if username, ok := usernameFromJWT(c); ok {
			c.Set("username", username)
			c.Next()
			return
		}

		session, err := GetSession(c)
		if err != nil || session.Username == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		c.Set("username", session.Username)
		c.Set("session_id", session.ID)
		c.Next()
	}
}

// usernameFromJWT extracts and validates a JWT from the cookie or the
// Authorization header.
func usernameFromJWT(c *gin.Context) (string, bool) {
	tokenString, err := c.Cookie(TokenCookieName)
	if err != nil || tokenString == "" {
		header := c.GetHeader("Authorization")
		if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
			tokenString = header[7:]
		}
	}
	if tokenString == "" {
		return "", false
	}

	claims, err := ValidateToken(tokenString)
	if err != nil {
		return "", false
	}
	return claims.Username, true
}

// GetUsernameFromContext returns the authenticated username, or "" if the
// request is unauthenticated.
func GetUsernameFromContext(c *gin.Context) string {
	return c.GetString("username")
}
