package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserIDHeader carries the caller identity. Authentication happens upstream;
// this service trusts the header as-is.
const UserIDHeader = "X-User-ID"

const userIDKey = "security.userID"

// RequireUserID rejects requests that do not carry a caller identity and
// stashes the identity on the gin context for handlers.
func RequireUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": "missing " + UserIDHeader + " header",
			})
			return
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the caller identity set by RequireUserID.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
