package services

import (
	"context"
	"fmt"

	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// enroll adds userID to projectID with role inside tx. The member count is
// bumped with an in-place increment only when a new membership row was
// written, so concurrent enrolments on the same project never lose updates.
func enroll(ctx context.Context, tx pgx.Tx, projectID, userID uuid.UUID, role models.Role) (bool, error) {
	result, err := tx.Exec(ctx, `
		INSERT INTO project_memberships (user_id, project_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, project_id) DO NOTHING
	`, userID, projectID)
	if err != nil {
		return false, fmt.Errorf("failed to add membership: %w", err)
	}
	if result.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO user_project_roles (user_id, role_id, project_id)
		SELECT $1, id, $2 FROM roles WHERE name = $3
		ON CONFLICT (user_id, role_id, project_id) DO NOTHING
	`, userID, projectID, string(role))
	if err != nil {
		return false, fmt.Errorf("failed to bind project role: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE projects SET member_count = member_count + 1, updated_at = NOW() WHERE id = $1
	`, projectID)
	if err != nil {
		return false, fmt.Errorf("failed to increment member count: %w", err)
	}

	return true, nil
}
