package services

import (
	"context"

	"github.com/dimitrije/taskhub-api/internal/database"
	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/google/uuid"
)

// AuthorizationService answers project-scoped authority questions. It only
// consults user_project_roles and project_memberships, never global roles, so
// a leader of one project has no authority over another.
type AuthorizationService struct {
	db *database.DB
}

func NewAuthorizationService(db *database.DB) *AuthorizationService {
	return &AuthorizationService{db: db}
}

func (s *AuthorizationService) IsLeaderOrAdmin(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM user_project_roles upr
			JOIN roles r ON r.id = upr.role_id
			WHERE upr.project_id = $1 AND upr.user_id = $2 AND r.name = ANY($3)
		)
	`, projectID, userID, leaderRoleNames()).Scan(&exists)
	return exists, err
}

func (s *AuthorizationService) IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM project_memberships WHERE project_id = $1 AND user_id = $2)
	`, projectID, userID).Scan(&exists)
	return exists, err
}

// ProjectRoles lists the roles userID holds inside projectID.
func (s *AuthorizationService) ProjectRoles(ctx context.Context, projectID, userID uuid.UUID) ([]models.Role, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT r.name FROM user_project_roles upr
		JOIN roles r ON r.id = upr.role_id
		WHERE upr.project_id = $1 AND upr.user_id = $2
		ORDER BY r.id
	`, projectID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (s *AuthorizationService) HasPermission(ctx context.Context, projectID, userID uuid.UUID, perm models.Permission) (bool, error) {
	roles, err := s.ProjectRoles(ctx, projectID, userID)
	if err != nil {
		return false, err
	}
	for _, role := range roles {
		if RoleHasPermission(role, perm) {
			return true, nil
		}
	}
	return false, nil
}

func (s *AuthorizationService) requireLeaderOrAdmin(ctx context.Context, projectID, userID uuid.UUID) error {
	ok, err := s.IsLeaderOrAdmin(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotLeaderOrAdmin
	}
	return nil
}

func (s *AuthorizationService) requireMember(ctx context.Context, projectID, userID uuid.UUID) error {
	ok, err := s.IsMember(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotProjectMember
	}
	return nil
}
