package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/model"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/jwt"
	"github.com/juliotorresmoreno/onnasoft-odoo-api/internal/pkg/response"
)

const (
	UserIDKey   = "userID"
	UserRoleKey = "userRole"
)

// UserLookup 按 ID 读取用户，用于角色检查
type UserLookup interface {
	GetByID(id int64) (*model.User, error)
}

// Auth JWT 认证中间件
func Auth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AuthError(c, "请提供认证信息")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			response.AuthError(c, "认证格式错误")
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(tokenString, jwtSecret)
		if err != nil {
			response.AuthError(c, "认证失败或已过期")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// RequireRole 必须在 Auth 之后使用，角色以数据库为准，令牌中不携带角色
func RequireRole(users UserLookup, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		user, err := users.GetByID(userID)
		if err != nil {
			response.AuthError(c, "用户不存在")
			c.Abort()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Set(UserRoleKey, user.Role)
				c.Next()
				return
			}
		}

		response.PermissionError(c, "")
		c.Abort()
	}
}

// RequireAdmin 仅管理员
func RequireAdmin(users UserLookup) gin.HandlerFunc {
	return RequireRole(users, model.RoleAdmin)
}

// GetUserID 从上下文获取用户 ID
func GetUserID(c *gin.Context) (int64, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(int64)
	return id, ok
}
