package services

import (
	"github.com/dimitrije/taskhub-api/internal/models"
)

// rolePermissions is immutable reference data. PROJECT_LEADER carries the
// GROUP_ADMIN approval permission so a leader can approve join requests.
var rolePermissions = map[models.Role][]models.Permission{
	models.RoleTeamMember: {
		models.PermissionRead,
	},
	models.RoleProjectLeader: {
		models.PermissionAcceptJoinRequest,
		models.PermissionDeleteMember,
		models.PermissionRead,
		models.PermissionCreateProject,
		models.PermissionJoinRequest,
	},
	models.RoleProjectAdmin: {
		models.PermissionAcceptJoinRequest,
		models.PermissionRead,
		models.PermissionCreateProject,
		models.PermissionJoinRequest,
	},
	models.RoleGroupAdmin: {
		models.PermissionAcceptJoinRequest,
		models.PermissionRead,
		models.PermissionCreateProject,
		models.PermissionJoinRequest,
	},
}

// leaderRoles are the project-scoped roles that grant authority over a project.
var leaderRoles = []models.Role{models.RoleProjectLeader, models.RoleProjectAdmin}

// PermissionsFor returns a copy of the permission set for role. Unknown roles have none.
func PermissionsFor(role models.Role) []models.Permission {
	perms := rolePermissions[role]
	out := make([]models.Permission, len(perms))
	copy(out, perms)
	return out
}

// RoleHasPermission reports whether role grants perm.
func RoleHasPermission(role models.Role, perm models.Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

func leaderRoleNames() []string {
	names := make([]string, len(leaderRoles))
	for i, r := range leaderRoles {
		names[i] = string(r)
	}
	return names
}
