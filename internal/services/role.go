package services

import (
	"errors"
	"fmt"

	"inventorywise/internal/models"
	apperrors "inventorywise/pkg/errors"

	"gorm.io/gorm"
)

type RoleService struct {
	db *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{db: db}
}

// ========== 基础CRUD方法 ==========

// Create 创建角色
func (s *RoleService) Create(name, description string) (*models.Role, error) {
	if err := s.ValidateName(name); err != nil {
		return nil, err
	}

	// 角色名全局唯一
	var count int64
	s.db.Model(&models.Role{}).Where("name = ?", name).Count(&count)
	if count > 0 {
		return nil, fmt.Errorf("a role with this name already exists")
	}

	role := &models.Role{
		Name:        name,
		Description: description,
	}

	err := s.db.Create(role).Error
	return role, err
}

// GetByID 根据ID获取角色
func (s *RoleService) GetByID(id uint) (*models.Role, error) {
	var role models.Role
	err := s.db.Preload("Permissions").First(&role, id).Error
	return &role, err
}

// GetByName 根据名称获取角色
func (s *RoleService) GetByName(name string) (*models.Role, error) {
	var role models.Role
	err := s.db.Preload("Permissions").Where("name = ?", name).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrRoleNotFound
	}
	return &role, err
}

// GetWithPage 分页获取角色
func (s *RoleService) GetWithPage(page, pageSize int) ([]*models.Role, int64, error) {
	var roles []*models.Role
	var total int64

	if err := s.db.Model(&models.Role{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := s.db.Preload("Permissions").Offset(offset).Limit(pageSize).Find(&roles).Error
	if err != nil {
		return nil, 0, err
	}

	return roles, total, nil
}

// Update 更新角色描述
func (s *RoleService) Update(id uint, description string) (*models.Role, error) {
	var role models.Role
	err := s.db.First(&role, id).Error
	if err != nil {
		return nil, err
	}

	role.Description = description
	err = s.db.Save(&role).Error
	return &role, err
}

// Delete 删除角色（用户关联与权限关联随之级联删除）
func (s *RoleService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Role{}, id).Error
	})
}

// ========== 权限管理方法 ==========

// AddPermission 给角色挂接权限（按名称）
// 权限名必须属于封闭集合，未声明的名称返回ErrPermissionNotFound。
func (s *RoleService) AddPermission(roleName string, code models.PermissionCode) error {
	if !code.Valid() {
		return apperrors.ErrPermissionNotFound
	}

	var role models.Role
	if err := s.db.Where("name = ?", roleName).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrRoleNotFound
		}
		return err
	}

	// 权限行按名称补齐（种子已创建全部声明的权限）
	var permission models.Permission
	if err := s.db.Where("name = ?", code.String()).
		FirstOrCreate(&permission, models.Permission{Name: code.String()}).Error; err != nil {
		return err
	}

	// (role, permission) 唯一
	var count int64
	s.db.Model(&models.RolePermission{}).
		Where("role_id = ? AND permission_id = ?", role.ID, permission.ID).Count(&count)
	if count > 0 {
		return nil
	}

	return s.db.Create(&models.RolePermission{
		RoleID:       role.ID,
		PermissionID: permission.ID,
	}).Error
}

// RemovePermission 从角色摘除权限（按名称）
func (s *RoleService) RemovePermission(roleName string, code models.PermissionCode) error {
	if !code.Valid() {
		return apperrors.ErrPermissionNotFound
	}

	var role models.Role
	if err := s.db.Where("name = ?", roleName).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrRoleNotFound
		}
		return err
	}

	return s.db.
		Where("role_id = ? AND permission_id IN (?)",
			role.ID,
			s.db.Model(&models.Permission{}).Select("id").Where("name = ?", code.String()),
		).
		Delete(&models.RolePermission{}).Error
}

// GetPermissions 获取角色的权限名列表
func (s *RoleService) GetPermissions(roleName string) ([]string, error) {
	var role models.Role
	if err := s.db.Where("name = ?", roleName).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoleNotFound
		}
		return nil, err
	}

	var names []string
	err := s.db.Model(&models.RolePermission{}).
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("role_permissions.role_id = ?", role.ID).
		Pluck("permissions.name", &names).Error
	return names, err
}

// ========== 验证方法 ==========

// ValidateName 验证角色名
func (s *RoleService) ValidateName(name string) error {
	if len(name) < 2 || len(name) > 255 {
		return fmt.Errorf("role name must be 2-255 characters")
	}
	for _, r := range name {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_') {
			return fmt.Errorf("role name may only contain lowercase letters, digits and underscore")
		}
	}
	return nil
}
