package services

import (
	"testing"

	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestPermissionsFor_TeamMember(t *testing.T) {
	assert.Equal(t, []models.Permission{models.PermissionRead}, PermissionsFor(models.RoleTeamMember))
}

func TestPermissionsFor_ProjectLeader(t *testing.T) {
	perms := PermissionsFor(models.RoleProjectLeader)

	assert.ElementsMatch(t, []models.Permission{
		models.PermissionAcceptJoinRequest,
		models.PermissionDeleteMember,
		models.PermissionRead,
		models.PermissionCreateProject,
		models.PermissionJoinRequest,
	}, perms)
}

func TestPermissionsFor_LeaderIncludesGroupAdminApproval(t *testing.T) {
	for _, p := range PermissionsFor(models.RoleGroupAdmin) {
		assert.True(t, RoleHasPermission(models.RoleProjectLeader, p), "leader should carry %s", p)
	}
}

func TestPermissionsFor_UnknownRole(t *testing.T) {
	assert.Empty(t, PermissionsFor(models.Role("SUPERUSER")))
}

func TestPermissionsFor_ReturnsCopy(t *testing.T) {
	perms := PermissionsFor(models.RoleTeamMember)
	perms[0] = models.PermissionDeleteMember

	assert.Equal(t, []models.Permission{models.PermissionRead}, PermissionsFor(models.RoleTeamMember))
}

func TestRoleHasPermission(t *testing.T) {
	assert.True(t, RoleHasPermission(models.RoleProjectLeader, models.PermissionDeleteMember))
	assert.False(t, RoleHasPermission(models.RoleGroupAdmin, models.PermissionDeleteMember))
	assert.False(t, RoleHasPermission(models.RoleTeamMember, models.PermissionAcceptJoinRequest))
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, models.RoleProjectAdmin.IsValid())
	assert.False(t, models.Role("OWNER").IsValid())
}
