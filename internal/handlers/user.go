package handlers

import (
	"github.com/dimitrije/taskhub-api/internal/middleware"
	"github.com/dimitrije/taskhub-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService UserServiceInterface
	logger      *zap.Logger
}

func NewUserHandler(userService UserServiceInterface, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

func (h *UserHandler) GetMe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	ctx := c.Request.Context()

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to get user")
		return
	}

	roles, err := h.userService.GlobalRoles(ctx, userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to get roles")
		return
	}

	_ = c.JSON(200, dto.NewUserResponse(user, roles))
}

func (h *UserHandler) UpdateMe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.UpdateUserRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondError(c, h.logger, err, "failed to update user")
		return
	}

	_ = c.JSON(200, dto.NewUserResponse(user, nil))
}
