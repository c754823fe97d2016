package dto

import (
	"time"

	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/google/uuid"
)

type IssueCouponRequest struct {
	UserID uuid.UUID `json:"user_id"`
}

type CouponResponse struct {
	ID               uuid.UUID `json:"id"`
	Code             string    `json:"coupon_code"`
	ProjectID        uuid.UUID `json:"project_id"`
	RequestingUserID uuid.UUID `json:"requesting_user_id"`
	LeaderID         uuid.UUID `json:"leader_id"`
	CreatedAt        time.Time `json:"created_at"`
}

type SubmitJoinRequest struct {
	CouponCode string `json:"coupon_code"`
}

type JoinRequestResponse struct {
	ID        uuid.UUID    `json:"id"`
	ProjectID uuid.UUID    `json:"project_id"`
	UserID    uuid.UUID    `json:"user_id"`
	Status    string       `json:"status"`
	DecidedBy *uuid.UUID   `json:"decided_by,omitempty"`
	DecidedAt *time.Time   `json:"decided_at,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	User      *UserSummary `json:"user,omitempty"`
}

func NewCouponResponse(c *models.JoinCoupon) CouponResponse {
	return CouponResponse{
		ID:               c.ID,
		Code:             c.CouponCode,
		ProjectID:        c.ProjectID,
		RequestingUserID: c.RequestingUserID,
		LeaderID:         c.LeaderID,
		CreatedAt:        c.CreatedAt,
	}
}

func NewJoinRequestResponse(r *models.JoinProjectRequest) JoinRequestResponse {
	return JoinRequestResponse{
		ID:        r.ID,
		ProjectID: r.ProjectID,
		UserID:    r.UserID,
		Status:    string(r.Status),
		DecidedBy: r.DecidedBy,
		DecidedAt: r.DecidedAt,
		CreatedAt: r.CreatedAt,
		User:      NewUserSummary(r.User),
	}
}
