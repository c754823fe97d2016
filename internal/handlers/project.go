package handlers

import (
	"github.com/dimitrije/taskhub-api/internal/middleware"
	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/dimitrije/taskhub-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService ProjectServiceInterface
	authService    AuthorizationServiceInterface
	logger         *zap.Logger
}

func NewProjectHandler(projectService ProjectServiceInterface, authService AuthorizationServiceInterface, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		authService:    authService,
		logger:         logger,
	}
}

// List returns the caller's projects, or every project with ?scope=all.
func (h *ProjectHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	ctx := c.Request.Context()

	var (
		projects []models.Project
		err      error
	)
	if c.QueryParam("scope") == "all" {
		projects, err = h.projectService.List(ctx)
	} else {
		projects, err = h.projectService.ListForUser(ctx, userID)
	}
	if err != nil {
		respondError(c, h.logger, err, "failed to list projects")
		return
	}

	_ = c.JSON(200, dto.NewProjectResponses(projects))
}

func (h *ProjectHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), req.Name, req.Description, userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to create project")
		return
	}

	_ = c.JSON(201, dto.NewProjectResponse(project))
}

func (h *ProjectHandler) Get(c *drift.Context) {
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

	project, err := h.projectService.GetByID(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, h.logger, err, "failed to get project")
		return
	}

	_ = c.JSON(200, dto.NewProjectResponse(project))
}

func (h *ProjectHandler) Update(c *drift.Context) {
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

	var req dto.UpdateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	ctx := c.Request.Context()

	current, err := h.projectService.GetByID(ctx, projectID)
	if err != nil {
		respondError(c, h.logger, err, "failed to get project")
		return
	}

	name, description := current.Name, current.Description
	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}

	project, err := h.projectService.Update(ctx, projectID, userID, name, description)
	if err != nil {
		respondError(c, h.logger, err, "failed to update project")
		return
	}

	_ = c.JSON(200, dto.NewProjectResponse(project))
}

func (h *ProjectHandler) Members(c *drift.Context) {
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

	members, err := h.projectService.Members(c.Request.Context(), projectID, userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to list members")
		return
	}

	response := make([]dto.MemberResponse, len(members))
	for i, m := range members {
		response[i] = dto.MemberResponse{
			UserID:   m.UserID,
			JoinedAt: m.CreatedAt,
			User:     dto.NewUserSummary(m.User),
		}
	}

	_ = c.JSON(200, response)
}

func (h *ProjectHandler) RemoveMember(c *drift.Context) {
	actorID := middleware.GetUserID(c)
	if actorID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	memberID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.BadRequest("invalid user id")
		return
	}

	if err := h.projectService.RemoveMember(c.Request.Context(), projectID, memberID, actorID); err != nil {
		respondError(c, h.logger, err, "failed to remove member")
		return
	}

	_ = c.JSON(200, dto.MessageResponse{Message: "member removed"})
}

// Authorization reports what the caller may do inside the project.
func (h *ProjectHandler) Authorization(c *drift.Context) {
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

	ctx := c.Request.Context()

	if _, err := h.projectService.GetByID(ctx, projectID); err != nil {
		respondError(c, h.logger, err, "failed to get project")
		return
	}

	isMember, err := h.authService.IsMember(ctx, projectID, userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to check membership")
		return
	}

	isLeader, err := h.authService.IsLeaderOrAdmin(ctx, projectID, userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to check project role")
		return
	}

	roles, err := h.authService.ProjectRoles(ctx, projectID, userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to load project roles")
		return
	}

	_ = c.JSON(200, dto.AuthorizationResponse{
		ProjectID:       projectID,
		IsMember:        isMember,
		IsLeaderOrAdmin: isLeader,
		Roles:           roleNames(roles),
	})
}
