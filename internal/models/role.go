package models

import "github.com/google/uuid"

type Role string

const (
	RoleTeamMember    Role = "TEAM_MEMBER"
	RoleProjectLeader Role = "PROJECT_LEADER"
	RoleProjectAdmin  Role = "PROJECT_ADMIN"
	RoleGroupAdmin    Role = "GROUP_ADMIN"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleTeamMember, RoleProjectLeader, RoleProjectAdmin, RoleGroupAdmin:
		return true
	default:
		return false
	}
}

type Permission string

const (
	PermissionRead              Permission = "read"
	PermissionAcceptJoinRequest Permission = "accept_join_request"
	PermissionDeleteMember      Permission = "delete_member"
	PermissionCreateProject     Permission = "create_project"
	PermissionJoinRequest       Permission = "join_request"
)

// UserProjectRole binds a role to a user inside a single project.
type UserProjectRole struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	RoleID    int       `json:"role_id"`
	Role      Role      `json:"role"`
	ProjectID uuid.UUID `json:"project_id"`
}
