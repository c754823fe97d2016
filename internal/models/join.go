package models

import (
	"time"

	"github.com/google/uuid"
)

type JoinCoupon struct {
	ID               uuid.UUID `json:"id"`
	CouponCode       string    `json:"coupon_code"`
	RequestingUserID uuid.UUID `json:"requesting_user_id"`
	LeaderID         uuid.UUID `json:"leader_id"`
	ProjectID        uuid.UUID `json:"project_id"`
	Used             bool      `json:"used"`
	CreatedAt        time.Time `json:"created_at"`
}

type JoinRequestStatus string

const (
	JoinRequestPending  JoinRequestStatus = "PENDING"
	JoinRequestApproved JoinRequestStatus = "APPROVED"
	JoinRequestRejected JoinRequestStatus = "REJECTED"
)

func (s JoinRequestStatus) IsValid() bool {
	switch s {
	case JoinRequestPending, JoinRequestApproved, JoinRequestRejected:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are allowed.
func (s JoinRequestStatus) IsTerminal() bool {
	return s == JoinRequestApproved || s == JoinRequestRejected
}

type JoinProjectRequest struct {
	ID        uuid.UUID         `json:"id"`
	ProjectID uuid.UUID         `json:"project_id"`
	UserID    uuid.UUID         `json:"user_id"`
	Status    JoinRequestStatus `json:"status"`
	DecidedBy *uuid.UUID        `json:"decided_by,omitempty"`
	DecidedAt *time.Time        `json:"decided_at,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	User      *User             `json:"user,omitempty"`
}
