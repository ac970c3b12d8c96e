package models

// PermissionCode 权限标识
// 权限名是封闭集合：路由与种子数据只使用下面声明的常量，
// 未声明的名称在角色管理接口会被拒绝，避免拼写错误导致静默拒绝访问。
type PermissionCode string

// 权限常量
const (
	PermCreateUser PermissionCode = "create_user" // 创建用户
	PermUpdateUser PermissionCode = "update_user" // 更新用户
	PermDeleteUser PermissionCode = "delete_user" // 删除用户
	PermViewItem   PermissionCode = "view_item"   // 查看商品
	PermEditItem   PermissionCode = "edit_item"   // 编辑商品
	PermDeleteItem PermissionCode = "delete_item" // 删除商品
)

// AllPermissionCodes 全部已声明的权限
var AllPermissionCodes = []PermissionCode{
	PermCreateUser,
	PermUpdateUser,
	PermDeleteUser,
	PermViewItem,
	PermEditItem,
	PermDeleteItem,
}

// Valid 检查权限名是否在封闭集合内
func (c PermissionCode) Valid() bool {
	for _, code := range AllPermissionCodes {
		if c == code {
			return true
		}
	}
	return false
}

func (c PermissionCode) String() string {
	return string(c)
}

// Permission 权限模型：原子能力
type Permission struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;size:255;not null" json:"name"` // 权限名，如 "edit_item"
	Description string `gorm:"type:text" json:"description"`
}

// TableName 表名
func (p *Permission) TableName() string {
	return "permissions"
}
