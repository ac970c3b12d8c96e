package handlers

import (
	"errors"

	"inventorywise/internal/models"
	"inventorywise/internal/services"
	apperrors "inventorywise/pkg/errors"
	"inventorywise/pkg/response"

	"github.com/gin-gonic/gin"
)

type PermissionHandler struct {
	permissionService *services.PermissionService
}

func NewPermissionHandler(permissionService *services.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

// List 获取全部权限
func (h *PermissionHandler) List(c *gin.Context) {
	permissions, err := h.permissionService.GetAll()
	if err != nil {
		response.ServerError(c, "Failed to list permissions")
		return
	}

	response.Success(c, permissions)
}

// Get 按名称获取权限
func (h *PermissionHandler) Get(c *gin.Context) {
	permission, err := h.permissionService.GetByName(c.Param("name"))
	if err != nil {
		if errors.Is(err, apperrors.ErrPermissionNotFound) {
			response.NotFound(c, "Permission not found")
			return
		}
		response.ServerError(c, "Failed to load permission")
		return
	}

	response.Success(c, permission)
}

// Roles 获取挂接了指定权限的角色名列表
func (h *PermissionHandler) Roles(c *gin.Context) {
	names, err := h.permissionService.GetRolesWithPermission(models.PermissionCode(c.Param("name")))
	if err != nil {
		if errors.Is(err, apperrors.ErrPermissionNotFound) {
			response.NotFound(c, "Permission not found")
			return
		}
		response.ServerError(c, "Failed to load roles")
		return
	}

	response.Success(c, names)
}
