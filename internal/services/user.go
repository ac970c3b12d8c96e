package services

import (
	"fmt"
	"strings"

	"inventorywise/internal/models"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// CreateUserParams 创建用户的参数
type CreateUserParams struct {
	Username   string
	Email      string
	Password   string
	Firstname  string
	Middlename string
	Lastname   string
	IsActive   *bool
	IsStaff    bool
}

// ========== 基础CRUD方法 ==========

// Create 创建用户
// 用户和资料在同一事务中创建，保证每个用户恰好一份资料。
func (s *UserService) Create(params CreateUserParams) (*models.User, error) {
	// 验证参数
	if err := s.ValidateCreateParams(params.Username, params.Email, params.Password); err != nil {
		return nil, err
	}

	// 检查用户名是否重复
	var usernameCount int64
	s.db.Model(&models.User{}).Where("username = ?", params.Username).Count(&usernameCount)
	if usernameCount > 0 {
		return nil, fmt.Errorf("a user with this username already exists")
	}

	// 检查邮箱是否重复
	var emailCount int64
	s.db.Model(&models.User{}).Where("email = ?", params.Email).Count(&emailCount)
	if emailCount > 0 {
		return nil, fmt.Errorf("a user with this email already exists")
	}

	isActive := true
	if params.IsActive != nil {
		isActive = *params.IsActive
	}

	user := &models.User{
		Username:   params.Username,
		Email:      strings.ToLower(params.Email),
		Firstname:  params.Firstname,
		Middlename: params.Middlename,
		Lastname:   params.Lastname,
		IsActive:   isActive,
		IsStaff:    params.IsStaff,
	}

	// 设置密码，明文在哈希后即被丢弃
	if err := user.SetPassword(params.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		// 资料随用户一起创建
		profile := &models.Profile{UserID: user.ID}
		return tx.Create(profile).Error
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// GetByID 根据ID获取用户
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	return &user, err
}

// GetByUsername 根据用户名获取用户
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	return &user, err
}

// GetByEmail 根据邮箱获取用户
func (s *UserService) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error
	return &user, err
}

// GetByIdentifier 根据用户名或邮箱获取用户（登录标识）
func (s *UserService) GetByIdentifier(identifier string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ? OR email = ?", identifier, strings.ToLower(identifier)).First(&user).Error
	return &user, err
}

// GetWithFiltersAndPage 组合查询（分页版本）
func (s *UserService) GetWithFiltersAndPage(keyword string, isActive *bool, page, pageSize int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := s.db.Model(&models.User{})

	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}
	if keyword != "" {
		searchPattern := fmt.Sprintf("%%%s%%", keyword)
		query = query.Where("username LIKE ? OR email LIKE ? OR firstname LIKE ? OR lastname LIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update 更新用户
func (s *UserService) Update(id uint, firstname, middlename, lastname, email string, isStaff *bool) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}

	if email != "" && !s.ValidateEmail(email) {
		return nil, fmt.Errorf("invalid email format")
	}

	// 如果邮箱变更，检查是否重复
	if email != "" && user.Email != strings.ToLower(email) {
		var emailCount int64
		s.db.Model(&models.User{}).Where("email = ? AND id != ?", strings.ToLower(email), id).Count(&emailCount)
		if emailCount > 0 {
			return nil, fmt.Errorf("a user with this email already exists")
		}
		user.Email = strings.ToLower(email)
	}

	if firstname != "" {
		user.Firstname = firstname
	}
	user.Middlename = middlename
	if lastname != "" {
		user.Lastname = lastname
	}
	if isStaff != nil {
		user.IsStaff = *isStaff
	}

	err = s.db.Save(&user).Error
	return &user, err
}

// ResetPassword 重置密码
func (s *UserService) ResetPassword(id uint, newPassword string) (*models.User, error) {
	if err := s.ValidatePassword(newPassword); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}

	if err := user.SetPassword(newPassword); err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	err = s.db.Save(&user).Error
	return &user, err
}

// Delete 删除用户（角色关联随之级联删除）
func (s *UserService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Profile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
}

// ========== 快捷操作方法 ==========

// Activate 激活用户
func (s *UserService) Activate(id uint) (*models.User, error) {
	return s.setActiveFlag(id, true)
}

// Deactivate 停用用户：停用后即使凭证正确也无法登录
func (s *UserService) Deactivate(id uint) (*models.User, error) {
	return s.setActiveFlag(id, false)
}

// DeactivateByEmail 根据邮箱停用用户
func (s *UserService) DeactivateByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return s.setActiveFlag(user.ID, false)
}

func (s *UserService) setActiveFlag(id uint, active bool) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}

	user.IsActive = active
	err = s.db.Model(&user).Update("is_active", active).Error
	return &user, err
}

// GetProfile 获取用户资料
func (s *UserService) GetProfile(userID uint) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	return &profile, err
}

// ========== 角色管理方法 ==========

// AddRole 为用户添加角色
func (s *UserService) AddRole(userID, roleID, createdBy uint) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return err
	}

	var role models.Role
	if err := s.db.First(&role, roleID).Error; err != nil {
		return err
	}

	// (user, role) 唯一
	var count int64
	s.db.Model(&models.UserRole{}).Where("user_id = ? AND role_id = ?", userID, roleID).Count(&count)
	if count > 0 {
		return fmt.Errorf("user already has this role")
	}

	userRole := &models.UserRole{
		UserID:    userID,
		RoleID:    roleID,
		CreatedBy: createdBy,
	}
	return s.db.Create(userRole).Error
}

// RemoveRole 撤销用户的角色
func (s *UserService) RemoveRole(userID, roleID uint) error {
	return s.db.Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&models.UserRole{}).Error
}

// GetUserRoles 获取用户的角色列表
func (s *UserService) GetUserRoles(userID uint) ([]models.Role, error) {
	var user models.User
	err := s.db.Preload("Roles").First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return user.Roles, nil
}

// ========== 权限解析 ==========

// GetUserPermissions 获取用户的全部权限名（去重）
// 每次调用都重新走 user_roles → role_permissions 联结，不做缓存，
// 授权/撤销立即生效。
func (s *UserService) GetUserPermissions(userID uint) ([]string, error) {
	roleIDs, err := s.userRoleIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(roleIDs) == 0 {
		return []string{}, nil
	}

	var names []string
	err = s.db.Model(&models.RolePermission{}).
		Distinct("permissions.name").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("role_permissions.role_id IN ?", roleIDs).
		Pluck("permissions.name", &names).Error
	return names, err
}

// HasPermission 检查用户是否持有指定权限
// 算法：取用户的角色ID集合，再取这些角色挂接的权限名集合，判断成员关系。
// 零角色用户的权限集为空，所有检查都失败（fail-closed）。
func (s *UserService) HasPermission(userID uint, code models.PermissionCode) (bool, error) {
	roleIDs, err := s.userRoleIDs(userID)
	if err != nil {
		return false, err
	}
	if len(roleIDs) == 0 {
		return false, nil
	}

	var count int64
	err = s.db.Model(&models.RolePermission{}).
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("role_permissions.role_id IN ? AND permissions.name = ?", roleIDs, code.String()).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// HasRole 检查用户是否持有指定角色
func (s *UserService) HasRole(userID uint, roleName string) (bool, error) {
	var count int64
	err := s.db.Model(&models.UserRole{}).
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ? AND roles.name = ?", userID, roleName).
		Count(&count).Error
	return count > 0, err
}

func (s *UserService) userRoleIDs(userID uint) ([]uint, error) {
	var roleIDs []uint
	err := s.db.Model(&models.UserRole{}).
		Where("user_id = ?", userID).
		Pluck("role_id", &roleIDs).Error
	return roleIDs, err
}

// ========== 验证相关方法 ==========

// ValidateUsername 验证用户名
func (s *UserService) ValidateUsername(username string) bool {
	if len(username) < 3 || len(username) > 255 {
		return false
	}
	for _, r := range username {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '.') {
			return false
		}
	}
	return true
}

// ValidateEmail 验证邮箱
func (s *UserService) ValidateEmail(email string) bool {
	return strings.Contains(email, "@") && strings.Contains(email, ".") && len(email) >= 5 && len(email) <= 255
}

// ValidatePassword 验证密码
func (s *UserService) ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt在72字节处截断
		return fmt.Errorf("password must not exceed 72 characters")
	}
	return nil
}

// ValidateCreateParams 验证创建用户的参数
func (s *UserService) ValidateCreateParams(username, email, password string) error {
	if !s.ValidateUsername(username) {
		return fmt.Errorf("username must be 3-255 characters of letters, digits, underscore or dot")
	}
	if !s.ValidateEmail(email) {
		return fmt.Errorf("invalid email format")
	}
	return s.ValidatePassword(password)
}
