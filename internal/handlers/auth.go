package handlers

import (
	"time"

	"github.com/dimitrije/taskhub-api/internal/middleware"
	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/dimitrije/taskhub-api/internal/services"
	"github.com/dimitrije/taskhub-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type AuthHandler struct {
	userService  UserServiceInterface
	tokenService TokenServiceInterface
	jwtService   JWTServiceInterface
	logger       *zap.Logger
}

func NewAuthHandler(
	userService UserServiceInterface,
	tokenService TokenServiceInterface,
	jwtService JWTServiceInterface,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		tokenService: tokenService,
		jwtService:   jwtService,
		logger:       logger,
	}
}

func (h *AuthHandler) Register(c *drift.Context) {
	var req dto.RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		c.BadRequest("email and password are required")
		return
	}

	user, err := h.userService.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondError(c, h.logger, err, "failed to register user")
		return
	}

	_ = c.JSON(201, dto.NewUserResponse(user, []models.Role{models.RoleTeamMember}))
}

func (h *AuthHandler) Verify(c *drift.Context) {
	token := c.QueryParam("token")
	if token == "" {
		c.BadRequest("token is required")
		return
	}

	user, err := h.userService.Verify(c.Request.Context(), token)
	if err != nil {
		respondError(c, h.logger, err, "failed to verify account")
		return
	}

	_ = c.JSON(200, dto.NewUserResponse(user, nil))
}

func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		c.BadRequest("email and password are required")
		return
	}

	ctx := c.Request.Context()

	user, err := h.userService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err, "failed to authenticate")
		return
	}

	tokenPair, err := h.issueTokens(c, user)
	if err != nil {
		return
	}

	tokenHash := services.HashToken(tokenPair.RefreshToken)
	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())
	if err := h.tokenService.StoreRefreshToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		respondError(c, h.logger, err, "failed to store refresh token")
		return
	}

	_ = c.JSON(200, dto.TokenResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	})
}

// RefreshToken exchanges a refresh token for a new pair. The presented token
// is consumed so it cannot be replayed.
func (h *AuthHandler) RefreshToken(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken == "" {
		c.BadRequest("refresh_token is required")
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.Unauthorized("invalid refresh token")
		return
	}

	ctx := c.Request.Context()

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	tokenPair, err := h.issueTokens(c, user)
	if err != nil {
		return
	}

	oldHash := services.HashToken(req.RefreshToken)
	newHash := services.HashToken(tokenPair.RefreshToken)
	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())
	storedUserID, err := h.tokenService.RotateRefreshToken(ctx, oldHash, newHash, expiresAt)
	if err != nil {
		respondError(c, h.logger, err, "failed to rotate refresh token")
		return
	}
	if storedUserID != userID {
		_ = h.tokenService.RevokeRefreshToken(ctx, newHash)
		c.Unauthorized("refresh token not found or expired")
		return
	}

	_ = c.JSON(200, dto.TokenResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	})
}

func (h *AuthHandler) Logout(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken != "" {
		tokenHash := services.HashToken(req.RefreshToken)
		if err := h.tokenService.RevokeRefreshToken(c.Request.Context(), tokenHash); err != nil {
			h.logger.Warn("failed to revoke refresh token", zap.Error(err))
		}
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "logged out"})
}

func (h *AuthHandler) LogoutAll(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	if err := h.tokenService.RevokeAllUserTokens(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err, "failed to revoke tokens")
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "all sessions logged out"})
}

// issueTokens signs a pair carrying the user's global roles. On failure the
// response has already been written.
func (h *AuthHandler) issueTokens(c *drift.Context, user *models.User) (*services.TokenPair, error) {
	roles, err := h.userService.GlobalRoles(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, h.logger, err, "failed to load roles")
		return nil, err
	}

	tokenPair, err := h.jwtService.GenerateTokenPair(user.ID, user.Email, roleNames(roles)...)
	if err != nil {
		h.logger.Error("failed to generate tokens", zap.Error(err), zap.String("user_id", user.ID.String()))
		c.InternalServerError("failed to generate tokens")
		return nil, err
	}
	return tokenPair, nil
}
