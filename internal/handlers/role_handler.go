package handlers

import (
	"errors"

	"inventorywise/internal/models"
	"inventorywise/internal/services"
	apperrors "inventorywise/pkg/errors"
	"inventorywise/pkg/pagination"
	"inventorywise/pkg/response"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct {
	roleService *services.RoleService
}

func NewRoleHandler(roleService *services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

type CreateRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateRoleRequest struct {
	Description string `json:"description"`
}

type RolePermissionRequest struct {
	Permission string `json:"permission" binding:"required"`
}

// Create 创建角色
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingErrorMessage(err))
		return
	}

	role, err := h.roleService.Create(req.Name, req.Description)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, "Role created successfully", role)
}

// List 分页获取角色
func (h *RoleHandler) List(c *gin.Context) {
	params := pagination.ParsePageParams(c)

	roles, total, err := h.roleService.GetWithPage(params.Page, params.PageSize)
	if err != nil {
		response.ServerError(c, "Failed to list roles")
		return
	}

	response.SuccessWithPage(c, roles, pagination.NewPageInfo(params.Page, params.PageSize, total))
}

// Get 按名称获取角色
func (h *RoleHandler) Get(c *gin.Context) {
	role, err := h.roleService.GetByName(c.Param("name"))
	if err != nil {
		if errors.Is(err, apperrors.ErrRoleNotFound) {
			response.NotFound(c, "Role not found")
			return
		}
		response.ServerError(c, "Failed to load role")
		return
	}

	response.Success(c, role)
}

// Update 更新角色描述
func (h *RoleHandler) Update(c *gin.Context) {
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingErrorMessage(err))
		return
	}

	role, err := h.roleService.GetByName(c.Param("name"))
	if err != nil {
		response.NotFound(c, "Role not found")
		return
	}

	role, err = h.roleService.Update(role.ID, req.Description)
	if err != nil {
		response.ServerError(c, "Failed to update role")
		return
	}

	response.SuccessWithMessage(c, "Role updated successfully", role)
}

// Delete 删除角色
func (h *RoleHandler) Delete(c *gin.Context) {
	role, err := h.roleService.GetByName(c.Param("name"))
	if err != nil {
		response.NotFound(c, "Role not found")
		return
	}

	if err := h.roleService.Delete(role.ID); err != nil {
		response.ServerError(c, "Failed to delete role")
		return
	}

	response.SuccessWithMessage(c, "Role deleted successfully", nil)
}

// AddPermission 给角色挂接权限
func (h *RoleHandler) AddPermission(c *gin.Context) {
	var req RolePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingErrorMessage(err))
		return
	}

	err := h.roleService.AddPermission(c.Param("name"), models.PermissionCode(req.Permission))
	if err != nil {
		h.writePermissionError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Permission added to role", nil)
}

// RemovePermission 从角色摘除权限
func (h *RoleHandler) RemovePermission(c *gin.Context) {
	var req RolePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, bindingErrorMessage(err))
		return
	}

	err := h.roleService.RemovePermission(c.Param("name"), models.PermissionCode(req.Permission))
	if err != nil {
		h.writePermissionError(c, err)
		return
	}

	response.SuccessWithMessage(c, "Permission removed from role", nil)
}

// Permissions 获取角色的权限名列表
func (h *RoleHandler) Permissions(c *gin.Context) {
	names, err := h.roleService.GetPermissions(c.Param("name"))
	if err != nil {
		if errors.Is(err, apperrors.ErrRoleNotFound) {
			response.NotFound(c, "Role not found")
			return
		}
		response.ServerError(c, "Failed to load permissions")
		return
	}

	response.Success(c, names)
}

func (h *RoleHandler) writePermissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrRoleNotFound):
		response.BadRequest(c, "Role not found")
	case errors.Is(err, apperrors.ErrPermissionNotFound):
		response.BadRequest(c, "Permission not found")
	default:
		response.ServerError(c, "Failed to update role permissions")
	}
}
