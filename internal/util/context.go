package util

import (
	"studypulse_backend/internal/model"

	"github.com/gin-gonic/gin"
)

const contextUserKey = "user"

func SetCurrentUser(c *gin.Context, user *model.User) {
	c.Set(contextUserKey, user)
}

// GetUserFromContext 未认证时返回 nil
func GetUserFromContext(c *gin.Context) *model.User {
	user, exists := c.Get(contextUserKey)
	if !exists {
		return nil
	}
	u, ok := user.(*model.User)
	if !ok {
		return nil
	}
	return u
}

const (
	contextRequestIDKey = "request_id"
	RequestIDHeader     = "X-Request-ID"
)

func SetRequestID(c *gin.Context, id string) {
	c.Set(contextRequestIDKey, id)
}

func GetRequestID(c *gin.Context) string {
	return c.GetString(contextRequestIDKey)
}
