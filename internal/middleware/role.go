package middleware

import (
	"github.com/gin-gonic/gin"

	"bukka/internal/session"
)

// RequireMode limits a route to sessions opened from the given pages.
func RequireMode(allowed ...session.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := CurrentSession(c)
		if s == nil {
			c.AbortWithStatusJSON(403, gin.H{"error": "session missing"})
			return
		}

		for _, m := range allowed {
			if s.Mode == m {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(403, gin.H{"error": "not available on this page"})
	}
}
