package handlers

import (
	"strconv"

	"inventorywise/internal/services"
	"inventorywise/pkg/pagination"
	"inventorywise/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type CreateUserRequest struct {
	Username   string `json:"username" binding:"required"`
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Firstname  string `json:"firstname"`
	Middlename string `json:"middlename"`
	Lastname   string `json:"lastname"`
	IsActive   *bool  `json:"is_active"`
	IsStaff    bool   `json:"is_staff"`
}

type UpdateUserRequest struct {
	Firstname  string `json:"firstname"`
	Middlename string `json:"middlename"`
	Lastname   string `json:"lastname"`
	Email      string `json:"email"`
	IsStaff    *bool  `json:"is_staff"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type AssignRoleRequest struct {
	RoleID uint `json:"role_id" binding:"required"`
}

// Create 创建用户（管理接口）
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
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
		IsActive:   req.IsActive,
		IsStaff:    req.IsStaff,
	})
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, "User created successfully", user)
}

// List 分页获取用户
func (h *UserHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)
	keyword := c.Query("search")

	var isActive *bool
	if v := c.Query("is_active"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(c, "Invalid is_active value")
			return
		}
		isActive = &parsed
	}

	users, total, err := h.userService.GetWithFiltersAndPage(keyword, isActive, params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "Failed to list users")
		return
	}

	response.SuccessWithPage(c, users, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Get 获取单个用户
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(id)
	if err != nil {
		response.NotFound(c, "User not found")
		return
	}

	response.Success(c, user)
}

// Update 更新用户
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingErrorMessage(err))
		return
	}

	user, err := h.userService.Update(id, req.Firstname, req.Middlename, req.Lastname, req.Email, req.IsStaff)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "User updated successfully", user)
}

// ResetPassword 重置用户密码
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingErrorMessage(err))
		return
	}

	if _, err := h.userService.ResetPassword(id, req.Password); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "Password reset successfully", nil)
}

// Delete 删除用户
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if _, err := h.userService.GetByID(id); err != nil {
		response.NotFound(c, "User not found")
		return
	}

	if err := h.userService.Delete(id); err != nil {
		response.ServerError(c, "Failed to delete user")
		return
	}

	response.SuccessWithMessage(c, "User deleted successfully", nil)
}

// Activate 激活用户
func (h *UserHandler) Activate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.Activate(id)
	if err != nil {
		response.NotFound(c, "User not found")
		return
	}

	response.SuccessWithMessage(c, "User activated", user)
}

// Deactivate 停用用户
func (h *UserHandler) Deactivate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.Deactivate(id)
	if err != nil {
		response.NotFound(c, "User not found")
		return
	}

	response.SuccessWithMessage(c, "User deactivated", user)
}

// AssignRole 为用户分配角色
func (h *UserHandler) AssignRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingErrorMessage(err))
		return
	}

	createdBy := c.GetUint("user_id")
	if err := h.userService.AddRole(id, req.RoleID, createdBy); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.SuccessWithMessage(c, "Role assigned successfully", nil)
}

// RevokeRole 撤销用户的角色
func (h *UserHandler) RevokeRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	roleID, err := strconv.ParseUint(c.Param("role_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "Invalid role ID")
		return
	}

	if err := h.userService.RemoveRole(id, uint(roleID)); err != nil {
		response.ServerError(c, "Failed to revoke role")
		return
	}

	response.SuccessWithMessage(c, "Role revoked successfully", nil)
}

// Roles 获取用户的角色列表
func (h *UserHandler) Roles(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	roles, err := h.userService.GetUserRoles(id)
	if err != nil {
		response.NotFound(c, "User not found")
		return
	}

	response.Success(c, roles)
}

// Permissions 获取用户的权限名列表
func (h *UserHandler) Permissions(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	permissions, err := h.userService.GetUserPermissions(id)
	if err != nil {
		response.ServerError(c, "Failed to load permissions")
		return
	}

	response.Success(c, permissions)
}

// parseIDParam 解析路径中的:id参数，失败时写400响应
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}
