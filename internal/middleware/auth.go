package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bukka/internal/session"
)

const sessionKey = "session"

type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

type SessionStore interface {
	Get(id string) (*session.Session, error)
}

// AuthMiddleware resolves the bearer token to a live session.
func AuthMiddleware(tokens TokenValidator, sessions SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format, use 'Bearer <token>'"})
			c.Abort()
			return
		}

		sessionID, err := tokens.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token: " + err.Error()})
			c.Abort()
			return
		}

		s, err := sessions.Get(sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired, please reload the page"})
			c.Abort()
			return
		}

		c.Set("sessionID", sessionID)
		c.Set(sessionKey, s)
		c.Next()
	}
}

// CurrentSession is set by AuthMiddleware.
func CurrentSession(c *gin.Context) *session.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	s, _ := v.(*session.Session)
	return s
}
