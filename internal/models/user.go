package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User 用户模型
type User struct {
	BaseModel
	Username     string `json:"username" gorm:"unique;not null;size:255;index"`
	Email        string `json:"email" gorm:"unique;not null;size:255;index"`
	PasswordHash string `json:"-" gorm:"not null;size:255"`
	Firstname    string `json:"firstname" gorm:"not null;size:255"`
	Middlename   string `json:"middlename" gorm:"size:255"`
	Lastname     string `json:"lastname" gorm:"not null;size:255"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`
	IsStaff      bool   `json:"is_staff" gorm:"default:false"`

	// 多对多关联
	Roles []Role `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

// TableName 表名
func (u *User) TableName() string {
	return "users"
}

// SetPassword 设置密码
// 明文仅在哈希期间存在，持久化的只有bcrypt摘要。
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// Profile 用户资料，与用户一对一
// 随用户在同一事务中创建，保证"每个用户恰好一份资料"。
type Profile struct {
	BaseModel
	UserID uint   `json:"user_id" gorm:"not null;uniqueIndex"`
	Bio    string `json:"bio" gorm:"type:text"`
	Avatar string `json:"avatar" gorm:"size:255"`
}

// TableName 表名
func (p *Profile) TableName() string {
	return "profiles"
}

// UserRole 用户角色关联表
type UserRole struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;uniqueIndex:idx_user_role;constraint:OnDelete:CASCADE" json:"user_id"`
	RoleID    uint      `gorm:"not null;index;uniqueIndex:idx_user_role;constraint:OnDelete:CASCADE" json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy uint      `json:"created_by"` // 谁分配的角色
}
