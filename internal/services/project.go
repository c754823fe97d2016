package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dimitrije/taskhub-api/internal/database"
	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/google/uuid"
)

// ProjectPublisher receives projects right after they are committed.
type ProjectPublisher interface {
	PublishProjectCreated(project models.Project)
}

type ProjectService struct {
	db        *database.DB
	auth      *AuthorizationService
	publisher ProjectPublisher
}

func NewProjectService(db *database.DB, auth *AuthorizationService, publisher ProjectPublisher) *ProjectService {
	return &ProjectService{db: db, auth: auth, publisher: publisher}
}

const projectColumns = `id, name, description, leader_id, member_count, created_at, updated_at`

func scanProject(row interface{ Scan(dest ...any) error }, p *models.Project) error {
	return row.Scan(&p.ID, &p.Name, &p.Description, &p.LeaderID, &p.MemberCount, &p.CreatedAt, &p.UpdatedAt)
}

// Create inserts the project and enrols the creator as its leader in one
// transaction. The creator counts as the first member.
func (s *ProjectService) Create(ctx context.Context, name, description string, creatorID uuid.UUID) (*models.Project, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	taken, err := s.ExistsByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrProjectNameTaken
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var project models.Project
	err = scanProject(tx.QueryRow(ctx, `
		INSERT INTO projects (name, description, leader_id)
		VALUES ($1, $2, $3)
		RETURNING `+projectColumns, name, description, creatorID), &project)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrProjectNameTaken
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	if _, err := enroll(ctx, tx, project.ID, creatorID, models.RoleProjectLeader); err != nil {
		return nil, err
	}
	project.MemberCount++

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if s.publisher != nil {
		s.publisher.PublishProjectCreated(project)
	}

	return &project, nil
}

func (s *ProjectService) GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := scanProject(s.db.Pool.QueryRow(ctx, `
		SELECT `+projectColumns+` FROM projects WHERE id = $1
	`, projectID), &project)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) FindByName(ctx context.Context, name string) (*models.Project, error) {
	var project models.Project
	err := scanProject(s.db.Pool.QueryRow(ctx, `
		SELECT `+projectColumns+` FROM projects WHERE LOWER(name) = LOWER($1)
	`, strings.TrimSpace(name)), &project)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM projects WHERE LOWER(name) = LOWER($1))
	`, strings.TrimSpace(name)).Scan(&exists)
	return exists, err
}

// List returns every project, newest first.
func (s *ProjectService) List(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+projectColumns+` FROM projects ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := scanProject(rows, &p); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *ProjectService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT p.id, p.name, p.description, p.leader_id, p.member_count, p.created_at, p.updated_at
		FROM projects p
		JOIN project_memberships pm ON p.id = pm.project_id
		WHERE pm.user_id = $1
		ORDER BY p.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := scanProject(rows, &p); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *ProjectService) Update(ctx context.Context, projectID, actorID uuid.UUID, name, description string) (*models.Project, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	if err := s.auth.requireLeaderOrAdmin(ctx, projectID, actorID); err != nil {
		return nil, err
	}

	var project models.Project
	err = scanProject(s.db.Pool.QueryRow(ctx, `
		UPDATE projects SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING `+projectColumns, name, description, projectID), &project)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrProjectNotFound
		}
		if database.IsUniqueViolation(err) {
			return nil, ErrProjectNameTaken
		}
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) Members(ctx context.Context, projectID, actorID uuid.UUID) ([]models.ProjectMembership, error) {
	if err := s.auth.requireMember(ctx, projectID, actorID); err != nil {
		return nil, err
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT pm.id, pm.user_id, pm.project_id, pm.created_at,
		       u.id, u.email, u.name, u.active, u.created_at, u.updated_at
		FROM project_memberships pm
		JOIN users u ON pm.user_id = u.id
		WHERE pm.project_id = $1
		ORDER BY pm.created_at
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.ProjectMembership
	for rows.Next() {
		var member models.ProjectMembership
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.UserID, &member.ProjectID, &member.CreatedAt,
			&user.ID, &user.Email, &user.Name, &user.Active, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		member.User = &user
		members = append(members, member)
	}
	return members, rows.Err()
}

// RemoveMember drops userID from the project. The actor needs the
// delete_member permission inside this project.
func (s *ProjectService) RemoveMember(ctx context.Context, projectID, userID, actorID uuid.UUID) error {
	allowed, err := s.auth.HasPermission(ctx, projectID, actorID, models.PermissionDeleteMember)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrMissingPermission
	}

	project, err := s.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project.LeaderID == userID {
		return ErrCannotRemoveLeader
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result, err := tx.Exec(ctx, `
		DELETE FROM project_memberships WHERE project_id = $1 AND user_id = $2
	`, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove membership: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM user_project_roles WHERE project_id = $1 AND user_id = $2
	`, projectID, userID); err != nil {
		return fmt.Errorf("failed to remove project roles: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE projects SET member_count = member_count - 1, updated_at = NOW()
		WHERE id = $1 AND member_count > 0
	`, projectID); err != nil {
		return fmt.Errorf("failed to decrement member count: %w", err)
	}

	return tx.Commit(ctx)
}
