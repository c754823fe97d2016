package services

import (
	"context"
	"fmt"

	"github.com/dimitrije/taskhub-api/internal/database"
	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/google/uuid"
)

// JoinRequestService turns redeemed coupons into pending join requests and
// lets project leaders decide them.
type JoinRequestService struct {
	db       *database.DB
	auth     *AuthorizationService
	coupons  *CouponService
	projects projectDirectory
	users    userDirectory
}

func NewJoinRequestService(db *database.DB, auth *AuthorizationService, coupons *CouponService, projects projectDirectory, users userDirectory) *JoinRequestService {
	return &JoinRequestService{db: db, auth: auth, coupons: coupons, projects: projects, users: users}
}

const joinRequestColumns = `id, project_id, user_id, status, decided_by, decided_at, created_at`

func scanJoinRequest(row interface{ Scan(dest ...any) error }, r *models.JoinProjectRequest) error {
	return row.Scan(&r.ID, &r.ProjectID, &r.UserID, &r.Status, &r.DecidedBy, &r.DecidedAt, &r.CreatedAt)
}

// Submit redeems code for userID and records a PENDING request. Consuming the
// coupon, inserting the request and deleting the coupon commit together, and
// the consume is a compare-and-set so exactly one concurrent submit wins.
func (s *JoinRequestService) Submit(ctx context.Context, projectID uuid.UUID, code string, userID uuid.UUID) (*models.JoinProjectRequest, error) {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	isMember, err := s.auth.IsMember(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	coupon, err := s.coupons.Redeem(ctx, code)
	if err != nil {
		return nil, err
	}
	if !s.coupons.IsValid(coupon) {
		return nil, ErrCouponUsed
	}
	if coupon.ProjectID != projectID || coupon.RequestingUserID != userID {
		return nil, ErrCouponMismatch
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result, err := tx.Exec(ctx, `
		UPDATE join_coupons SET used = TRUE
		WHERE id = $1 AND NOT used
	`, coupon.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to consume coupon: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrCouponConsumed
	}

	var request models.JoinProjectRequest
	err = scanJoinRequest(tx.QueryRow(ctx, `
		INSERT INTO join_project_requests (project_id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING `+joinRequestColumns, projectID, userID, string(models.JoinRequestPending)), &request)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrRequestAlreadyExists
		}
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM join_coupons WHERE id = $1`, coupon.ID); err != nil {
		return nil, fmt.Errorf("failed to delete coupon: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &request, nil
}

func (s *JoinRequestService) GetByID(ctx context.Context, requestID uuid.UUID) (*models.JoinProjectRequest, error) {
	var request models.JoinProjectRequest
	err := scanJoinRequest(s.db.Pool.QueryRow(ctx, `
		SELECT `+joinRequestColumns+` FROM join_project_requests WHERE id = $1
	`, requestID), &request)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrJoinRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

// ListByStatus returns the project's requests in status, oldest first, with
// the requesting user attached. Callers gate access.
func (s *JoinRequestService) ListByStatus(ctx context.Context, projectID uuid.UUID, status models.JoinRequestStatus) ([]models.JoinProjectRequest, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT jr.id, jr.project_id, jr.user_id, jr.status, jr.decided_by, jr.decided_at, jr.created_at,
		       u.id, u.email, u.name, u.active, u.created_at, u.updated_at
		FROM join_project_requests jr
		JOIN users u ON jr.user_id = u.id
		WHERE jr.project_id = $1 AND jr.status = $2
		ORDER BY jr.created_at
	`, projectID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []models.JoinProjectRequest
	for rows.Next() {
		var r models.JoinProjectRequest
		var u models.User
		if err := rows.Scan(
			&r.ID, &r.ProjectID, &r.UserID, &r.Status, &r.DecidedBy, &r.DecidedAt, &r.CreatedAt,
			&u.ID, &u.Email, &u.Name, &u.Active, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		r.User = &u
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

// Decide moves a PENDING request to outcome. The request row is locked for
// the duration so two deciders serialize, and an approval enrols the user as
// TEAM_MEMBER in the same transaction.
func (s *JoinRequestService) Decide(ctx context.Context, requestID uuid.UUID, outcome models.JoinRequestStatus, deciderID uuid.UUID) (*models.JoinProjectRequest, error) {
	if !outcome.IsTerminal() {
		return nil, ErrInvalidOutcome
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var request models.JoinProjectRequest
	err = scanJoinRequest(tx.QueryRow(ctx, `
		SELECT `+joinRequestColumns+` FROM join_project_requests WHERE id = $1 FOR UPDATE
	`, requestID), &request)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrJoinRequestNotFound
		}
		return nil, fmt.Errorf("failed to load join request: %w", err)
	}

	if request.Status != models.JoinRequestPending {
		return nil, ErrRequestDecided
	}

	if err := s.auth.requireLeaderOrAdmin(ctx, request.ProjectID, deciderID); err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, `
		UPDATE join_project_requests
		SET status = $1, decided_by = $2, decided_at = NOW()
		WHERE id = $3 AND status = 'PENDING'
		RETURNING status, decided_by, decided_at
	`, string(outcome), deciderID, requestID).Scan(&request.Status, &request.DecidedBy, &request.DecidedAt)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrRequestDecided
		}
		return nil, fmt.Errorf("failed to record decision: %w", err)
	}

	if outcome == models.JoinRequestApproved {
		if _, err := enroll(ctx, tx, request.ProjectID, request.UserID, models.RoleTeamMember); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &request, nil
}
