package services

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/dimitrije/taskhub-api/internal/database"
	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/google/uuid"
)

const (
	couponPrefixLen   = 4
	couponFragmentLen = 4
	couponMaxAttempts = 3
)

type projectDirectory interface {
	GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
}

type userDirectory interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// CouponService issues single-use join coupons. A coupon binds one invitee to
// one project and is consumed by JoinRequestService.Submit.
type CouponService struct {
	db       *database.DB
	auth     *AuthorizationService
	projects projectDirectory
	users    userDirectory
}

func NewCouponService(db *database.DB, auth *AuthorizationService, projects projectDirectory, users userDirectory) *CouponService {
	return &CouponService{db: db, auth: auth, projects: projects, users: users}
}

const couponColumns = `id, coupon_code, requesting_user_id, leader_id, project_id, used, created_at`

func scanCoupon(row interface{ Scan(dest ...any) error }, c *models.JoinCoupon) error {
	return row.Scan(&c.ID, &c.CouponCode, &c.RequestingUserID, &c.LeaderID, &c.ProjectID, &c.Used, &c.CreatedAt)
}

func (s *CouponService) Issue(ctx context.Context, projectID, requestingUserID, issuerID uuid.UUID) (*models.JoinCoupon, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, requestingUserID); err != nil {
		return nil, err
	}

	if err := s.auth.requireLeaderOrAdmin(ctx, projectID, issuerID); err != nil {
		return nil, err
	}

	if requestingUserID == issuerID {
		return nil, ErrAlreadyMember
	}
	isMember, err := s.auth.IsMember(ctx, projectID, requestingUserID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	for attempt := 0; attempt < couponMaxAttempts; attempt++ {
		active, err := s.FindActiveForUserAndProject(ctx, requestingUserID, projectID)
		if err != nil {
			return nil, err
		}
		if active != nil {
			return nil, ErrCouponAlreadyExists
		}

		var coupon models.JoinCoupon
		err = scanCoupon(s.db.Pool.QueryRow(ctx, `
			INSERT INTO join_coupons (coupon_code, requesting_user_id, leader_id, project_id, used)
			VALUES ($1, $2, $3, $4, FALSE)
			RETURNING `+couponColumns,
			GenerateCouponCode(project, issuerID, requestingUserID), requestingUserID, issuerID, projectID,
		), &coupon)
		if err == nil {
			return &coupon, nil
		}
		if !database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create coupon: %w", err)
		}
		// Either a concurrent issue won the active-coupon index or the code
		// collided. The next pass tells the two apart.
	}

	return nil, fmt.Errorf("%w: could not allocate a unique coupon code", ErrConflict)
}

// Redeem locates a coupon by code. It does not judge validity beyond existence.
func (s *CouponService) Redeem(ctx context.Context, code string) (*models.JoinCoupon, error) {
	var coupon models.JoinCoupon
	err := scanCoupon(s.db.Pool.QueryRow(ctx, `
		SELECT `+couponColumns+` FROM join_coupons WHERE coupon_code = $1
	`, strings.TrimSpace(code)), &coupon)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrCouponUnknown
		}
		return nil, err
	}
	return &coupon, nil
}

// FindActiveForUserAndProject returns the outstanding coupon, or nil when there is none.
func (s *CouponService) FindActiveForUserAndProject(ctx context.Context, userID, projectID uuid.UUID) (*models.JoinCoupon, error) {
	var coupon models.JoinCoupon
	err := scanCoupon(s.db.Pool.QueryRow(ctx, `
		SELECT `+couponColumns+` FROM join_coupons
		WHERE requesting_user_id = $1 AND project_id = $2 AND NOT used
	`, userID, projectID), &coupon)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &coupon, nil
}

// IsValid reports whether the coupon can still be redeemed. Coupons do not expire.
func (s *CouponService) IsValid(coupon *models.JoinCoupon) bool {
	return coupon != nil && !coupon.Used
}

// GenerateCouponCode builds a short human-relayable code:
// four letters sampled from the project name, then fragments of the project,
// leader and invitee ids around the current member count, then a two digit pad.
// It is an invite string, not a secret.
func GenerateCouponCode(project *models.Project, leaderID, requestingUserID uuid.UUID) string {
	letters := []rune(strings.ToUpper(strings.Join(strings.Fields(project.Name), "")))
	if len(letters) == 0 {
		letters = []rune{'X'}
	}

	var b strings.Builder
	for i := 0; i < couponPrefixLen; i++ {
		b.WriteRune(letters[rand.IntN(len(letters))])
	}
	b.WriteByte('-')
	b.WriteString(idFragment(project.ID))
	b.WriteString(idFragment(leaderID))
	fmt.Fprintf(&b, "%d", project.MemberCount)
	b.WriteString(idFragment(requestingUserID))
	fmt.Fprintf(&b, "%02d", rand.IntN(100))
	return b.String()
}

func idFragment(id uuid.UUID) string {
	return id.String()[:couponFragmentLen]
}
