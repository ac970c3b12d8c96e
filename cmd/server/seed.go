package main

import (
	"fmt"
	"os"

	"inventorywise/internal/database"
	"inventorywise/internal/models"
	"inventorywise/pkg/logger"

	"gorm.io/gorm"
)

// seedData 初始化种子数据
// 所有步骤按名称去重，可以安全地重复执行。
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()

	// 1. 初始化权限
	if err := seedPermissions(db); err != nil {
		return fmt.Errorf("初始化权限失败: %v", err)
	}

	// 2. 初始化角色及权限绑定
	if err := seedRoles(db); err != nil {
		return fmt.Errorf("初始化角色失败: %v", err)
	}

	// 3. 创建默认管理员用户
	if err := seedDefaultAdmin(db); err != nil {
		return fmt.Errorf("创建默认管理员失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// seedPermissions 按封闭集合补齐权限行
func seedPermissions(db *gorm.DB) error {
	descriptions := map[models.PermissionCode]string{
		models.PermCreateUser: "Create user accounts",
		models.PermUpdateUser: "Update user accounts",
		models.PermDeleteUser: "Delete user accounts",
		models.PermViewItem:   "View catalog items",
		models.PermEditItem:   "Create and edit catalog items",
		models.PermDeleteItem: "Delete catalog items",
	}

	for _, code := range models.AllPermissionCodes {
		var permission models.Permission
		err := db.Where("name = ?", code.String()).
			FirstOrCreate(&permission, models.Permission{
				Name:        code.String(),
				Description: descriptions[code],
			}).Error
		if err != nil {
			return err
		}
	}

	logger.GetLogger().Infof("Seeded %d permissions", len(models.AllPermissionCodes))
	return nil
}

// seedRoles 初始化内置角色与权限绑定
func seedRoles(db *gorm.DB) error {
	bundles := []struct {
		name        string
		description string
		permissions []models.PermissionCode
	}{
		{
			name:        models.RoleAdmin,
			description: "Full access to users, roles and catalog",
			permissions: models.AllPermissionCodes,
		},
		{
			name:        models.RoleStockManager,
			description: "Manage catalog items and stock levels",
			permissions: []models.PermissionCode{models.PermViewItem, models.PermEditItem},
		},
		{
			name:        models.RoleSalesRep,
			description: "Read-only access to catalog items",
			permissions: []models.PermissionCode{models.PermViewItem},
		},
	}

	for _, bundle := range bundles {
		var role models.Role
		err := db.Where("name = ?", bundle.name).
			FirstOrCreate(&role, models.Role{
				Name:        bundle.name,
				Description: bundle.description,
			}).Error
		if err != nil {
			return err
		}

		for _, code := range bundle.permissions {
			var permission models.Permission
			if err := db.Where("name = ?", code.String()).First(&permission).Error; err != nil {
				return err
			}

			var count int64
			db.Model(&models.RolePermission{}).
				Where("role_id = ? AND permission_id = ?", role.ID, permission.ID).Count(&count)
			if count > 0 {
				continue
			}

			err := db.Create(&models.RolePermission{
				RoleID:       role.ID,
				PermissionID: permission.ID,
			}).Error
			if err != nil {
				return err
			}
		}
	}

	logger.GetLogger().Infof("Seeded %d roles", len(bundles))
	return nil
}

// seedDefaultAdmin 创建默认管理员用户（含资料和admin角色）
func seedDefaultAdmin(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		logger.GetLogger().Info("Default admin already exists, skipping")
		return nil
	}

	password := os.Getenv("ADMIN_INITIAL_PASSWORD")
	if password == "" {
		password = "Admin@123456"
	}

	admin := &models.User{
		Username:  "admin",
		Email:     "admin@inventorywise.local",
		Firstname: "System",
		Lastname:  "Administrator",
		IsActive:  true,
		IsStaff:   true,
	}
	if err := admin.SetPassword(password); err != nil {
		return err
	}

	var adminRole models.Role
	if err := db.Where("name = ?", models.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(admin).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.Profile{UserID: admin.ID}).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserRole{
			UserID: admin.ID,
			RoleID: adminRole.ID,
		}).Error
	})
}
