package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every concrete error below wraps exactly one of these so callers
// can branch with errors.Is on the kind alone.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCoupon      = errors.New("invalid coupon")
	ErrInvalidState       = errors.New("invalid state")
	ErrConflict           = errors.New("conflict")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var (
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrProjectNotFound     = fmt.Errorf("project %w", ErrNotFound)
	ErrJoinRequestNotFound = fmt.Errorf("join request %w", ErrNotFound)
	ErrTaskNotFound        = fmt.Errorf("task %w", ErrNotFound)
	ErrMemberNotFound      = fmt.Errorf("member %w", ErrNotFound)

	ErrNotLeaderOrAdmin  = fmt.Errorf("%w: caller is not a leader or admin of this project", ErrForbidden)
	ErrNotProjectMember  = fmt.Errorf("%w: caller is not a member of this project", ErrForbidden)
	ErrMissingPermission = fmt.Errorf("%w: missing project permission", ErrForbidden)

	ErrEmailTaken           = fmt.Errorf("email %w", ErrAlreadyExists)
	ErrProjectNameTaken     = fmt.Errorf("project name %w", ErrAlreadyExists)
	ErrAlreadyMember        = fmt.Errorf("membership %w", ErrAlreadyExists)
	ErrCouponAlreadyExists  = fmt.Errorf("active coupon %w", ErrAlreadyExists)
	ErrRequestAlreadyExists = fmt.Errorf("pending join request %w", ErrAlreadyExists)

	ErrCouponUnknown  = fmt.Errorf("%w: unknown code", ErrInvalidCoupon)
	ErrCouponUsed     = fmt.Errorf("%w: already used", ErrInvalidCoupon)
	ErrCouponMismatch = fmt.Errorf("%w: not issued for this project and user", ErrInvalidCoupon)

	// ErrCouponConsumed means the coupon was valid when read but another submit
	// consumed it first. Callers may retry with a fresh coupon.
	ErrCouponConsumed = fmt.Errorf("%w: coupon consumed concurrently", ErrConflict)

	ErrRequestDecided     = fmt.Errorf("%w: join request already decided", ErrInvalidState)
	ErrCannotRemoveLeader = fmt.Errorf("%w: project leader cannot be removed", ErrInvalidState)

	ErrInvalidOutcome    = fmt.Errorf("%w: outcome must be APPROVED or REJECTED", ErrValidation)
	ErrInvalidProgress   = fmt.Errorf("%w: progress must be between 0 and 100", ErrValidation)
	ErrAssigneeNotMember = fmt.Errorf("%w: assignee is not a project member", ErrValidation)
	ErrWeakPassword      = fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	ErrInvalidEmail      = fmt.Errorf("%w: invalid email address", ErrValidation)
	ErrNameRequired      = fmt.Errorf("%w: name is required", ErrValidation)
	ErrNameInvalid       = fmt.Errorf("%w: name must not contain control characters", ErrValidation)
	ErrTitleRequired     = fmt.Errorf("%w: title is required", ErrValidation)
	ErrBodyRequired      = fmt.Errorf("%w: comment body is required", ErrValidation)
)
