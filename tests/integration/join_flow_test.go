package integration

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/dimitrije/taskhub-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinFlow_Integration_IssueSubmitApprove(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()

	leader := s.fixtures.CreateUser(t)
	joiner := s.fixtures.CreateUser(t)

	project, err := s.projects.Create(ctx, "Apollo", "moon", leader.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, s.fixtures.MemberCount(t, project))

	coupon, err := s.coupons.Issue(ctx, project.ID, joiner.ID, leader.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, coupon.CouponCode)

	_, err = s.coupons.Issue(ctx, project.ID, joiner.ID, leader.ID)
	assert.ErrorIs(t, err, services.ErrCouponAlreadyExists)

	request, err := s.joins.Submit(ctx, project.ID, coupon.CouponCode, joiner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JoinRequestPending, request.Status)
	assert.Equal(t, 0, s.fixtures.CountRows(t, "join_coupons", "id = $1", coupon.ID))

	pending, err := s.joins.ListByStatus(ctx, project.ID, models.JoinRequestPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	decided, err := s.joins.Decide(ctx, request.ID, models.JoinRequestApproved, leader.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JoinRequestApproved, decided.Status)

	isMember, err := s.auth.IsMember(ctx, project.ID, joiner.ID)
	require.NoError(t, err)
	assert.True(t, isMember)
	assert.Equal(t, 2, s.fixtures.MemberCount(t, project))

	roles, err := s.auth.ProjectRoles(ctx, project.ID, joiner.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Role{models.RoleTeamMember}, roles)

	_, err = s.joins.Decide(ctx, request.ID, models.JoinRequestRejected, leader.ID)
	assert.ErrorIs(t, err, services.ErrRequestDecided)

	stored, err := s.joins.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JoinRequestApproved, stored.Status)
	assert.Equal(t, 2, s.fixtures.MemberCount(t, project))
}

func TestJoinFlow_Integration_LeaderAuthorityIsProjectScoped(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()

	leaderA := s.fixtures.CreateUser(t)
	leaderB := s.fixtures.CreateUser(t)
	invitee := s.fixtures.CreateUser(t)

	projectA, err := s.projects.Create(ctx, "Atlas", "", leaderA.ID)
	require.NoError(t, err)
	projectB, err := s.projects.Create(ctx, "Boreas", "", leaderB.ID)
	require.NoError(t, err)

	ok, err := s.auth.IsLeaderOrAdmin(ctx, projectA.ID, leaderA.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.auth.IsLeaderOrAdmin(ctx, projectB.ID, leaderA.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.coupons.Issue(ctx, projectB.ID, invitee.ID, leaderA.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)
	assert.Equal(t, 0, s.fixtures.CountRows(t, "join_coupons", "project_id = $1", projectB.ID))
}

func TestJoinFlow_Integration_RejectLeavesMembershipUntouched(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()

	leader := s.fixtures.CreateUser(t)
	joiner := s.fixtures.CreateUser(t)
	project, err := s.projects.Create(ctx, "Gemini", "", leader.ID)
	require.NoError(t, err)

	coupon, err := s.coupons.Issue(ctx, project.ID, joiner.ID, leader.ID)
	require.NoError(t, err)
	request, err := s.joins.Submit(ctx, project.ID, coupon.CouponCode, joiner.ID)
	require.NoError(t, err)

	_, err = s.joins.Decide(ctx, request.ID, models.JoinRequestRejected, leader.ID)
	require.NoError(t, err)

	isMember, err := s.auth.IsMember(ctx, project.ID, joiner.ID)
	require.NoError(t, err)
	assert.False(t, isMember)
	assert.Equal(t, 1, s.fixtures.MemberCount(t, project))
}

func TestJoinFlow_Integration_NonLeaderCannotDecide(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()

	leader := s.fixtures.CreateUser(t)
	joiner := s.fixtures.CreateUser(t)
	outsider := s.fixtures.CreateUser(t)
	project, err := s.projects.Create(ctx, "Mercury", "", leader.ID)
	require.NoError(t, err)

	_, err = s.coupons.Issue(ctx, project.ID, joiner.ID, outsider.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)

	coupon, err := s.coupons.Issue(ctx, project.ID, joiner.ID, leader.ID)
	require.NoError(t, err)
	request, err := s.joins.Submit(ctx, project.ID, coupon.CouponCode, joiner.ID)
	require.NoError(t, err)

	_, err = s.joins.Decide(ctx, request.ID, models.JoinRequestApproved, outsider.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)
}

func TestJoinFlow_Integration_CouponBoundToUser(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()

	leader := s.fixtures.CreateUser(t)
	invitee := s.fixtures.CreateUser(t)
	other := s.fixtures.CreateUser(t)
	project, err := s.projects.Create(ctx, "Artemis", "", leader.ID)
	require.NoError(t, err)

	coupon, err := s.coupons.Issue(ctx, project.ID, invitee.ID, leader.ID)
	require.NoError(t, err)

	_, err = s.joins.Submit(ctx, project.ID, coupon.CouponCode, other.ID)
	assert.ErrorIs(t, err, services.ErrInvalidCoupon)

	_, err = s.joins.Submit(ctx, project.ID, "no-such-code", invitee.ID)
	assert.ErrorIs(t, err, services.ErrInvalidCoupon)
}

func TestJoinFlow_Integration_ConcurrentSubmitConsumesCouponOnce(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()

	leader := s.fixtures.CreateUser(t)
	joiner := s.fixtures.CreateUser(t)
	project, err := s.projects.Create(ctx, "Voyager", "", leader.ID)
	require.NoError(t, err)

	coupon, err := s.coupons.Issue(ctx, project.ID, joiner.ID, leader.ID)
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failures  []error
	)
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.joins.Submit(ctx, project.ID, coupon.CouponCode, joiner.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			failures = append(failures, err)
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	for _, err := range failures {
		assert.True(t,
			errors.Is(err, services.ErrInvalidCoupon) ||
				errors.Is(err, services.ErrConflict) ||
				errors.Is(err, services.ErrAlreadyExists),
			"unexpected error: %v", err)
	}
	assert.Equal(t, 1, s.fixtures.CountRows(t, "join_project_requests", "project_id = $1", project.ID))
	assert.Equal(t, 0, s.fixtures.CountRows(t, "join_coupons", "project_id = $1", project.ID))
}

func TestJoinFlow_Integration_ConcurrentApprovalsCountEveryMember(t *testing.T) {
	s := setupTest(t)
	ctx := context.Background()

	leader := s.fixtures.CreateUser(t)
	project, err := s.projects.Create(ctx, "Pioneer", "", leader.ID)
	require.NoError(t, err)

	const joiners = 6
	requests := make([]*models.JoinProjectRequest, 0, joiners)
	for i := 0; i < joiners; i++ {
		joiner := s.fixtures.CreateUser(t)
		coupon, err := s.coupons.Issue(ctx, project.ID, joiner.ID, leader.ID)
		require.NoError(t, err)
		request, err := s.joins.Submit(ctx, project.ID, coupon.CouponCode, joiner.ID)
		require.NoError(t, err)
		requests = append(requests, request)
	}

	var wg sync.WaitGroup
	errs := make(chan error, joiners)
	for _, request := range requests {
		wg.Add(1)
		go func(request models.JoinProjectRequest) {
			defer wg.Done()
			_, err := s.joins.Decide(ctx, request.ID, models.JoinRequestApproved, leader.ID)
			errs <- err
		}(*request)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1+joiners, s.fixtures.MemberCount(t, project))
	assert.Equal(t, 1+joiners, s.fixtures.CountRows(t, "project_memberships", "project_id = $1", project.ID))
}
