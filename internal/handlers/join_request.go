package handlers

import (
	"strings"

	"github.com/dimitrije/taskhub-api/internal/middleware"
	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/dimitrije/taskhub-api/internal/services"
	"github.com/dimitrije/taskhub-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type JoinRequestHandler struct {
	couponService      CouponServiceInterface
	joinRequestService JoinRequestServiceInterface
	authService        AuthorizationServiceInterface
	projectService     ProjectServiceInterface
	userService        UserServiceInterface
	notifier           CouponNotifierInterface
	logger             *zap.Logger
}

func NewJoinRequestHandler(
	couponService CouponServiceInterface,
	joinRequestService JoinRequestServiceInterface,
	authService AuthorizationServiceInterface,
	projectService ProjectServiceInterface,
	userService UserServiceInterface,
	notifier CouponNotifierInterface,
	logger *zap.Logger,
) *JoinRequestHandler {
	return &JoinRequestHandler{
		couponService:      couponService,
		joinRequestService: joinRequestService,
		authService:        authService,
		projectService:     projectService,
		userService:        userService,
		notifier:           notifier,
		logger:             logger,
	}
}

func (h *JoinRequestHandler) IssueCoupon(c *drift.Context) {
	leaderID := middleware.GetUserID(c)
	if leaderID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	var req dto.IssueCouponRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.UserID == uuid.Nil {
		c.BadRequest("user_id is required")
		return
	}

	coupon, err := h.couponService.Issue(c.Request.Context(), projectID, req.UserID, leaderID)
	if err != nil {
		respondError(c, h.logger, err, "failed to issue coupon")
		return
	}

	h.mailCoupon(c, coupon)

	_ = c.JSON(201, dto.NewCouponResponse(coupon))
}

// mailCoupon sends the code to the invitee. Issuing has already succeeded, so
// lookup failures are only logged.
func (h *JoinRequestHandler) mailCoupon(c *drift.Context, coupon *models.JoinCoupon) {
	ctx := c.Request.Context()

	invitee, err := h.userService.GetByID(ctx, coupon.RequestingUserID)
	if err != nil {
		h.logger.Warn("coupon not mailed", zap.Error(err), zap.String("coupon_id", coupon.ID.String()))
		return
	}
	leader, err := h.userService.GetByID(ctx, coupon.LeaderID)
	if err != nil {
		h.logger.Warn("coupon not mailed", zap.Error(err), zap.String("coupon_id", coupon.ID.String()))
		return
	}
	project, err := h.projectService.GetByID(ctx, coupon.ProjectID)
	if err != nil {
		h.logger.Warn("coupon not mailed", zap.Error(err), zap.String("coupon_id", coupon.ID.String()))
		return
	}

	h.notifier.SendCoupon(invitee.Email, project.Name, leader.Name, coupon.CouponCode)
}

func (h *JoinRequestHandler) Submit(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	var req dto.SubmitJoinRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if strings.TrimSpace(req.CouponCode) == "" {
		c.BadRequest("coupon_code is required")
		return
	}

	request, err := h.joinRequestService.Submit(c.Request.Context(), projectID, req.CouponCode, userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to submit join request")
		return
	}

	_ = c.JSON(201, dto.NewJoinRequestResponse(request))
}

// List returns the project's requests in one status, PENDING by default.
// Only leaders and admins of the project may look.
func (h *JoinRequestHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	status := models.JoinRequestPending
	if q := c.QueryParam("status"); q != "" {
		status = models.JoinRequestStatus(strings.ToUpper(q))
	}
	if !status.IsValid() {
		c.BadRequest("invalid status")
		return
	}

	ctx := c.Request.Context()

	allowed, err := h.authService.IsLeaderOrAdmin(ctx, projectID, userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to check project role")
		return
	}
	if !allowed {
		respondError(c, h.logger, services.ErrNotLeaderOrAdmin, "")
		return
	}

	requests, err := h.joinRequestService.ListByStatus(ctx, projectID, status)
	if err != nil {
		respondError(c, h.logger, err, "failed to list join requests")
		return
	}

	response := make([]dto.JoinRequestResponse, len(requests))
	for i := range requests {
		response[i] = dto.NewJoinRequestResponse(&requests[i])
	}

	_ = c.JSON(200, response)
}

func (h *JoinRequestHandler) Approve(c *drift.Context) {
	h.decide(c, models.JoinRequestApproved)
}

func (h *JoinRequestHandler) Reject(c *drift.Context) {
	h.decide(c, models.JoinRequestRejected)
}

func (h *JoinRequestHandler) decide(c *drift.Context, outcome models.JoinRequestStatus) {
	deciderID := middleware.GetUserID(c)
	if deciderID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid join request id")
		return
	}

	request, err := h.joinRequestService.Decide(c.Request.Context(), requestID, outcome, deciderID)
	if err != nil {
		respondError(c, h.logger, err, "failed to decide join request")
		return
	}

	_ = c.JSON(200, dto.NewJoinRequestResponse(request))
}
