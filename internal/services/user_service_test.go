package services

import (
	"fmt"
	"testing"

	"inventorywise/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// 每个测试使用独立的内存库，避免交叉污染
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{}, &models.Profile{},
		&models.Permission{}, &models.Role{},
		&models.RolePermission{}, &models.UserRole{},
		&models.Category{}, &models.Product{}, &models.Inventory{},
		&models.StockReport{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedRBAC 准备权限、角色和角色权限绑定
func seedRBAC(t *testing.T, db *gorm.DB) map[models.PermissionCode]uint {
	t.Helper()
	permIDs := make(map[models.PermissionCode]uint)
	for _, code := range models.AllPermissionCodes {
		p := models.Permission{Name: code.String()}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("seed permission: %v", err)
		}
		permIDs[code] = p.ID
	}
	return permIDs
}

func seedRole(t *testing.T, db *gorm.DB, name string, permIDs map[models.PermissionCode]uint, codes ...models.PermissionCode) *models.Role {
	t.Helper()
	role := models.Role{Name: name}
	if err := db.Create(&role).Error; err != nil {
		t.Fatalf("seed role: %v", err)
	}
	for _, code := range codes {
		rp := models.RolePermission{RoleID: role.ID, PermissionID: permIDs[code]}
		if err := db.Create(&rp).Error; err != nil {
			t.Fatalf("seed role permission: %v", err)
		}
	}
	return &role
}

func TestCreateUserWithProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Create(CreateUserParams{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "supersecret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	// 邮箱小写归一化
	assert.Equal(t, "alice@example.com", user.Email)
	assert.True(t, user.IsActive)
	// 明文不落库
	assert.NotEqual(t, "supersecret1", user.PasswordHash)
	assert.True(t, user.CheckPassword("supersecret1"))

	// 资料随用户创建
	var profileCount int64
	db.Model(&models.Profile{}).Where("user_id = ?", user.ID).Count(&profileCount)
	assert.Equal(t, int64(1), profileCount)
}

func TestCreateUserDuplicates(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	_, err := svc.Create(CreateUserParams{Username: "alice", Email: "alice@example.com", Password: "supersecret1"})
	require.NoError(t, err)

	_, err = svc.Create(CreateUserParams{Username: "alice", Email: "other@example.com", Password: "supersecret1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username already exists")

	_, err = svc.Create(CreateUserParams{Username: "bob", Email: "alice@example.com", Password: "supersecret1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email already exists")
}

func TestGetByIdentifier(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)

	created, err := svc.Create(CreateUserParams{Username: "alice", Email: "alice@example.com", Password: "supersecret1"})
	require.NoError(t, err)

	byUsername, err := svc.GetByIdentifier("alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUsername.ID)

	byEmail, err := svc.GetByIdentifier("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = svc.GetByIdentifier("nobody")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestHasPermissionThroughRole(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	permIDs := seedRBAC(t, db)
	stockManager := seedRole(t, db, models.RoleStockManager, permIDs, models.PermViewItem, models.PermEditItem)

	alice, err := svc.Create(CreateUserParams{Username: "alice", Email: "alice@example.com", Password: "supersecret1"})
	require.NoError(t, err)
	require.NoError(t, svc.AddRole(alice.ID, stockManager.ID, 0))

	has, err := svc.HasPermission(alice.ID, models.PermViewItem)
	require.NoError(t, err)
	assert.True(t, has)

	has, err = svc.HasPermission(alice.ID, models.PermDeleteItem)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestHasPermissionZeroRolesFailsClosed(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	seedRBAC(t, db)

	bob, err := svc.Create(CreateUserParams{Username: "bob", Email: "bob@example.com", Password: "supersecret1"})
	require.NoError(t, err)

	// 零角色用户所有权限检查都失败
	for _, code := range models.AllPermissionCodes {
		has, err := svc.HasPermission(bob.ID, code)
		require.NoError(t, err)
		assert.False(t, has, "expected no %s permission", code)
	}

	perms, err := svc.GetUserPermissions(bob.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestPermissionGrantTakesEffectImmediately(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	permIDs := seedRBAC(t, db)
	salesRep := seedRole(t, db, models.RoleSalesRep, permIDs, models.PermViewItem)

	alice, err := svc.Create(CreateUserParams{Username: "alice", Email: "alice@example.com", Password: "supersecret1"})
	require.NoError(t, err)
	require.NoError(t, svc.AddRole(alice.ID, salesRep.ID, 0))

	has, err := svc.HasPermission(alice.ID, models.PermEditItem)
	require.NoError(t, err)
	require.False(t, has)

	// 权限逐请求解析，挂接后立即可见
	rp := models.RolePermission{RoleID: salesRep.ID, PermissionID: permIDs[models.PermEditItem]}
	require.NoError(t, db.Create(&rp).Error)

	has, err = svc.HasPermission(alice.ID, models.PermEditItem)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestAddRoleDuplicate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	permIDs := seedRBAC(t, db)
	admin := seedRole(t, db, models.RoleAdmin, permIDs, models.AllPermissionCodes...)

	alice, err := svc.Create(CreateUserParams{Username: "alice", Email: "alice@example.com", Password: "supersecret1"})
	require.NoError(t, err)

	require.NoError(t, svc.AddRole(alice.ID, admin.ID, 0))
	err = svc.AddRole(alice.ID, admin.ID, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has this role")
}

func TestDeactivateAndDelete(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	permIDs := seedRBAC(t, db)
	admin := seedRole(t, db, models.RoleAdmin, permIDs, models.PermViewItem)

	alice, err := svc.Create(CreateUserParams{Username: "alice", Email: "alice@example.com", Password: "supersecret1"})
	require.NoError(t, err)
	require.NoError(t, svc.AddRole(alice.ID, admin.ID, 0))

	deactivated, err := svc.Deactivate(alice.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	require.NoError(t, svc.Delete(alice.ID))

	// 角色关联和资料随用户删除
	var roleCount, profileCount int64
	db.Model(&models.UserRole{}).Where("user_id = ?", alice.ID).Count(&roleCount)
	db.Model(&models.Profile{}).Where("user_id = ?", alice.ID).Count(&profileCount)
	assert.Equal(t, int64(0), roleCount)
	assert.Equal(t, int64(0), profileCount)
}

func TestValidateCreateParams(t *testing.T) {
	svc := NewUserService(nil)

	assert.Error(t, svc.ValidateCreateParams("ab", "a@b.com", "supersecret1"))       // 用户名太短
	assert.Error(t, svc.ValidateCreateParams("alice", "not-an-email", "supersecret1")) // 邮箱非法
	assert.Error(t, svc.ValidateCreateParams("alice", "a@b.com", "short"))           // 密码太短
	assert.NoError(t, svc.ValidateCreateParams("alice", "a@b.com", "supersecret1"))
}
