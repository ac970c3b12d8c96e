package handlers

import (
	"errors"

	"inventorywise/internal/services"
	apperrors "inventorywise/pkg/errors"
	"inventorywise/pkg/jwt"
	"inventorywise/pkg/logger"
	"inventorywise/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	userService *services.UserService
	jwtManager  *jwt.JWTManager
}

func NewAuthHandler(userService *services.UserService, jwtManager *jwt.JWTManager) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtManager:  jwtManager,
	}
}

type RegisterRequest struct {
	Username   string `json:"username" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Firstname  string `json:"firstname"`
	Middlename string `json:"middlename"`
	Lastname   string `json:"lastname"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UserInfo 登录响应中的用户摘要
type UserInfo struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
	IsStaff  bool   `json:"is_staff"`
}

// Register 用户注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingErrorMessage(err))
		return
	}

	user, err := h.userService.Create(services.CreateUserParams{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		Firstname:  req.Firstname,
		Middlename: req.Middlename,
		Lastname:   req.Lastname,
	})
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, "User registered successfully", UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsActive: user.IsActive,
		IsStaff:  user.IsStaff,
	})
}

// Login 用户登录
// 标识符可以是用户名或邮箱。停用账户的检查先于密码验证，
// 凭证正确与否都返回同样的400，避免为停用账户泄露密码正确性。
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingErrorMessage(err))
		return
	}

	user, err := h.userService.GetByIdentifier(req.Identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Unauthorized(c, "User Not Found")
			return
		}
		response.ServerError(c, "Failed to look up user")
		return
	}

	if !user.IsActive {
		response.BadRequest(c, "Account is deactivated")
		return
	}

	if !user.CheckPassword(req.Password) {
		response.Unauthorized(c, "Incorrect Password")
		return
	}

	accessToken, err := h.jwtManager.GenerateAccessToken(user.ID)
	if err != nil {
		response.ServerError(c, "Failed to generate token")
		return
	}

	refreshToken, err := h.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		response.ServerError(c, "Failed to generate refresh token")
		return
	}

	// 访问令牌同时写入httponly cookie
	h.setTokenCookie(c, accessToken)

	logger.GetLogger().Infof("user %s logged in", user.Username)

	response.SuccessRaw(c, gin.H{
		"message":       "Login successful",
		"token":         accessToken,
		"refresh_token": refreshToken,
		"user": UserInfo{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			IsActive: user.IsActive,
			IsStaff:  user.IsStaff,
		},
	})
}

// Logout 用户登出：清除token cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if _, err := c.Cookie("token"); err != nil {
		response.BadRequest(c, "User is already logged out")
		return
	}

	c.SetCookie("token", "", -1, "/", "", false, true)
	response.SuccessWithMessage(c, "Logged Out Successfully", nil)
}

// Refresh 用刷新令牌换取新的访问令牌
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingErrorMessage(err))
		return
	}

	userID, err := h.jwtManager.VerifyToken(req.RefreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenExpired) {
			response.Unauthorized(c, "Token has expired")
		} else {
			response.Unauthorized(c, "Invalid token")
		}
		return
	}

	user, err := h.userService.GetByID(userID)
	if err != nil {
		response.Unauthorized(c, "User not found")
		return
	}

	if !user.IsActive {
		response.BadRequest(c, "Account is deactivated")
		return
	}

	accessToken, err := h.jwtManager.GenerateAccessToken(user.ID)
	if err != nil {
		response.ServerError(c, "Failed to generate token")
		return
	}

	h.setTokenCookie(c, accessToken)

	response.SuccessRaw(c, gin.H{
		"message":      "Token refreshed",
		"access_token": accessToken,
	})
}

// Profile 当前登录用户的完整信息
func (h *AuthHandler) Profile(c *gin.Context) {
	userID := c.GetUint("user_id")

	user, err := h.userService.GetByID(userID)
	if err != nil {
		response.NotFound(c, "User not found")
		return
	}

	roles, err := h.userService.GetUserRoles(user.ID)
	if err != nil {
		response.ServerError(c, "Failed to load roles")
		return
	}

	permissions, err := h.userService.GetUserPermissions(user.ID)
	if err != nil {
		response.ServerError(c, "Failed to load permissions")
		return
	}

	roleNames := make([]string, 0, len(roles))
	for _, role := range roles {
		roleNames = append(roleNames, role.Name)
	}

	data := gin.H{
		"user":        user,
		"roles":       roleNames,
		"permissions": permissions,
	}

	if profile, err := h.userService.GetProfile(user.ID); err == nil {
		data["profile"] = profile
	}

	response.Success(c, data)
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string) {
	maxAge := int(h.jwtManager.GetAccessDuration().Seconds())
	c.SetCookie("token", token, maxAge, "/", "", false, true)
}
