package middleware

import (
	"errors"
	"strings"

	"inventorywise/internal/models"
	"inventorywise/internal/services"
	apperrors "inventorywise/pkg/errors"
	"inventorywise/pkg/jwt"
	"inventorywise/pkg/response"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 认证与授权中间件
type AuthMiddleware struct {
	userService *services.UserService
	jwtManager  *jwt.JWTManager
}

func NewAuthMiddleware(userService *services.UserService, jwtManager *jwt.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		userService: userService,
		jwtManager:  jwtManager,
	}
}

// RequireAuth 要求请求携带有效的访问令牌
// Authorization头必须恰好是 "Bearer <token>" 两段，否则401。
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Invalid token header")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 {
			response.Unauthorized(c, "Invalid token header")
			c.Abort()
			return
		}
		if !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "Invalid token prefix")
			c.Abort()
			return
		}

		tokenString := parts[1]

		userID, err := m.jwtManager.VerifyToken(tokenString)
		if err != nil {
			if errors.Is(err, apperrors.ErrTokenExpired) {
				response.Unauthorized(c, "Token has expired")
			} else {
				response.Unauthorized(c, "Invalid token")
			}
			c.Abort()
			return
		}

		user, err := m.userService.GetByID(userID)
		if err != nil {
			response.Unauthorized(c, "User not found")
			c.Abort()
			return
		}

		if !user.IsActive {
			response.Unauthorized(c, "Account is deactivated")
			c.Abort()
			return
		}

		// 将用户信息保存到上下文
		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("token", tokenString)

		c.Next()
	}
}

// RequirePermission 要求特定权限
// 权限逐请求解析，角色或权限变更立即生效。
func (m *AuthMiddleware) RequirePermission(code models.PermissionCode) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			response.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		hasPermission, err := m.userService.HasPermission(userID.(uint), code)
		if err != nil {
			response.ServerError(c, "Permission check failed")
			c.Abort()
			return
		}

		if !hasPermission {
			response.Forbidden(c, "You do not have the "+code.String()+" permission")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireRole 要求特定角色
func (m *AuthMiddleware) RequireRole(roleName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			response.Unauthorized(c, "Authentication required")
			c.Abort()
			return
		}

		hasRole, err := m.userService.HasRole(userID.(uint), roleName)
		if err != nil {
			response.ServerError(c, "Role check failed")
			c.Abort()
			return
		}

		if !hasRole {
			response.Forbidden(c, "You do not have the "+roleName+" role")
			c.Abort()
			return
		}

		c.Next()
	}
}
