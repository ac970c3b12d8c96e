package services

import (
	"errors"

	"inventorywise/internal/models"
	apperrors "inventorywise/pkg/errors"

	"gorm.io/gorm"
)

type PermissionService struct {
	db *gorm.DB
}

func NewPermissionService(db *gorm.DB) *PermissionService {
	return &PermissionService{db: db}
}

// GetAll 获取全部权限
func (s *PermissionService) GetAll() ([]*models.Permission, error) {
	var permissions []*models.Permission
	err := s.db.Order("id ASC").Find(&permissions).Error
	return permissions, err
}

// GetByName 根据名称获取权限
// 名称不在封闭集合内时直接拒绝，不落库查询。
func (s *PermissionService) GetByName(name string) (*models.Permission, error) {
	code := models.PermissionCode(name)
	if !code.Valid() {
		return nil, apperrors.ErrPermissionNotFound
	}

	var permission models.Permission
	err := s.db.Where("name = ?", name).First(&permission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrPermissionNotFound
	}
	return &permission, err
}

// GetRolesWithPermission 获取挂接了指定权限的角色名列表
func (s *PermissionService) GetRolesWithPermission(code models.PermissionCode) ([]string, error) {
	if !code.Valid() {
		return nil, apperrors.ErrPermissionNotFound
	}

	var names []string
	err := s.db.Model(&models.RolePermission{}).
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Where("permissions.name = ?", code.String()).
		Pluck("roles.name", &names).Error
	return names, err
}
