package middleware

import (
	"studypulse_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxRequestIDLen = 64

// RequestIDMiddleware 透传客户端的 X-Request-ID，缺失或过长时生成新的
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(util.RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		util.SetRequestID(c, id)
		c.Header(util.RequestIDHeader, id)
		c.Next()
	}
}
