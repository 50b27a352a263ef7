package middleware

import (
	"context"
	"errors"
	"studypulse_backend/internal/model"
	"studypulse_backend/internal/util"
	"studypulse_backend/pkg/firebase"
	"studypulse_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*firebase.Identity, error)
}

type UserResolver interface {
	Resolve(ctx context.Context, identity *firebase.Identity) (*model.User, error)
}

func authenticate(c *gin.Context, verifier TokenVerifier, resolver UserResolver, header string) (*model.User, error) {
	token, err := firebase.ParseBearer(header)
	if err != nil {
		return nil, err
	}
	identity, err := verifier.Verify(c.Request.Context(), token)
	if err != nil {
		return nil, err
	}
	return resolver.Resolve(c.Request.Context(), identity)
}

// AuthMiddleware 要求有效的 Firebase ID token，并把本地用户写入上下文
func AuthMiddleware(verifier TokenVerifier, resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := authenticate(c, verifier, resolver, c.GetHeader("Authorization"))
		if err != nil {
			logAuthFailure(c, err)
			util.HandleError(c, err)
			return
		}

		util.SetCurrentUser(c, user)
		c.Next()
	}
}

// TryAuthMiddleware 没有 Authorization 头时以匿名身份继续，提供了无效凭证则拒绝
func TryAuthMiddleware(verifier TokenVerifier, resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		user, err := authenticate(c, verifier, resolver, header)
		if err != nil {
			logAuthFailure(c, err)
			util.HandleError(c, err)
			return
		}

		util.SetCurrentUser(c, user)
		c.Next()
	}
}

// StaffMiddleware 必须在 AuthMiddleware 之后使用
func StaffMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c, "Authentication credentials were not provided.")
			return
		}
		if !user.IsStaff {
			util.Forbidden(c)
			return
		}
		c.Next()
	}
}

func logAuthFailure(c *gin.Context, err error) {
	var authErr *firebase.AuthError
	if errors.As(err, &authErr) {
		logger.Log.Debug("Authentication failed",
			zap.String("path", c.FullPath()),
			zap.String("reason", string(authErr.Reason)),
			zap.Error(authErr.Err),
		)
		return
	}
	logger.Log.Warn("Authentication failed", zap.String("path", c.FullPath()), zap.Error(err))
}
