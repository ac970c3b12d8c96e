package models

import "time"

// Role 角色模型：可复用的权限集合
type Role struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;size:255;not null" json:"name"` // 角色名，如 "stock_manager"
	Description string `gorm:"type:text" json:"description"`

	// 关联关系
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
}

// TableName 表名
func (r *Role) TableName() string {
	return "roles"
}

// 系统预定义角色常量
const (
	RoleAdmin        = "admin"         // 管理员
	RoleStockManager = "stock_manager" // 库存管理员
	RoleSalesRep     = "sales_rep"     // 销售代表
)

// RolePermission 角色权限关联表
type RolePermission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RoleID       uint      `gorm:"not null;index;uniqueIndex:idx_role_permission;constraint:OnDelete:CASCADE" json:"role_id"`
	PermissionID uint      `gorm:"not null;index;uniqueIndex:idx_role_permission;constraint:OnDelete:CASCADE" json:"permission_id"`
	CreatedAt    time.Time `json:"created_at"`
}
