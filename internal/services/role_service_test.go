package services

import (
	"testing"

	"inventorywise/internal/models"
	apperrors "inventorywise/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleCreateAndValidate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db)

	role, err := svc.Create("stock_manager", "Manages stock")
	require.NoError(t, err)
	assert.Equal(t, "stock_manager", role.Name)

	_, err = svc.Create("stock_manager", "duplicate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = svc.Create("Bad Name", "")
	assert.Error(t, err)
}

func TestAddPermissionUnknownRole(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db)
	seedRBAC(t, db)

	err := svc.AddPermission("ghost", models.PermViewItem)
	assert.ErrorIs(t, err, apperrors.ErrRoleNotFound)
}

func TestAddPermissionOutsideClosedSet(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db)
	seedRBAC(t, db)
	_, err := svc.Create("sales_rep", "")
	require.NoError(t, err)

	// 封闭集合外的权限名被拒绝，且不落库
	err = svc.AddPermission("sales_rep", models.PermissionCode("launch_rocket"))
	assert.ErrorIs(t, err, apperrors.ErrPermissionNotFound)

	var count int64
	db.Model(&models.Permission{}).Where("name = ?", "launch_rocket").Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestAddAndRemovePermission(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db)
	seedRBAC(t, db)
	_, err := svc.Create("sales_rep", "")
	require.NoError(t, err)

	require.NoError(t, svc.AddPermission("sales_rep", models.PermViewItem))
	// 重复挂接是幂等的
	require.NoError(t, svc.AddPermission("sales_rep", models.PermViewItem))

	names, err := svc.GetPermissions("sales_rep")
	require.NoError(t, err)
	assert.Equal(t, []string{"view_item"}, names)

	require.NoError(t, svc.RemovePermission("sales_rep", models.PermViewItem))

	names, err = svc.GetPermissions("sales_rep")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRoleDeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db)
	userSvc := NewUserService(db)
	seedRBAC(t, db)

	role, err := svc.Create("stock_manager", "")
	require.NoError(t, err)
	require.NoError(t, svc.AddPermission("stock_manager", models.PermEditItem))

	alice, err := userSvc.Create(CreateUserParams{Username: "alice", Email: "alice@example.com", Password: "supersecret1"})
	require.NoError(t, err)
	require.NoError(t, userSvc.AddRole(alice.ID, role.ID, 0))

	require.NoError(t, svc.Delete(role.ID))

	var userRoles, rolePerms int64
	db.Model(&models.UserRole{}).Where("role_id = ?", role.ID).Count(&userRoles)
	db.Model(&models.RolePermission{}).Where("role_id = ?", role.ID).Count(&rolePerms)
	assert.Equal(t, int64(0), userRoles)
	assert.Equal(t, int64(0), rolePerms)

	// 角色删除后用户权限立即收回
	has, err := userSvc.HasPermission(alice.ID, models.PermEditItem)
	require.NoError(t, err)
	assert.False(t, has)
}
