package handlers

import (
	"github.com/dimitrije/taskhub-api/internal/middleware"
	"github.com/dimitrije/taskhub-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type TaskHandler struct {
	taskService    TaskServiceInterface
	commentService CommentServiceInterface
	logger         *zap.Logger
}

func NewTaskHandler(taskService TaskServiceInterface, commentService CommentServiceInterface, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		taskService:    taskService,
		commentService: commentService,
		logger:         logger,
	}
}

func (h *TaskHandler) Create(c *drift.Context) {
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

	var req dto.CreateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Title == "" {
		c.BadRequest("title is required")
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), projectID, userID, req.Title, req.Description, req.DueDate)
	if err != nil {
		respondError(c, h.logger, err, "failed to create task")
		return
	}

	_ = c.JSON(201, dto.NewTaskResponse(task))
}

func (h *TaskHandler) List(c *drift.Context) {
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

	tasks, err := h.taskService.ListByProject(c.Request.Context(), projectID, userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to list tasks")
		return
	}

	response := make([]dto.TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = dto.NewTaskResponse(&tasks[i])
	}

	_ = c.JSON(200, response)
}

func (h *TaskHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	task, err := h.taskService.GetByID(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to get task")
		return
	}

	_ = c.JSON(200, dto.NewTaskResponse(task))
}

func (h *TaskHandler) Assign(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	var req dto.AssignTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.AssigneeID == uuid.Nil {
		c.BadRequest("assignee_id is required")
		return
	}

	task, err := h.taskService.Assign(c.Request.Context(), taskID, req.AssigneeID, userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to assign task")
		return
	}

	_ = c.JSON(200, dto.NewTaskResponse(task))
}

func (h *TaskHandler) UpdateProgress(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	var req dto.UpdateProgressRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Progress == nil {
		c.BadRequest("progress is required")
		return
	}

	task, err := h.taskService.UpdateProgress(c.Request.Context(), taskID, *req.Progress, userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to update progress")
		return
	}

	_ = c.JSON(200, dto.NewTaskResponse(task))
}

func (h *TaskHandler) ListComments(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	comments, err := h.commentService.List(c.Request.Context(), taskID, userID)
	if err != nil {
		respondError(c, h.logger, err, "failed to list comments")
		return
	}

	response := make([]dto.CommentResponse, len(comments))
	for i := range comments {
		response[i] = dto.NewCommentResponse(&comments[i])
	}

	_ = c.JSON(200, response)
}

func (h *TaskHandler) AddComment(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	var req dto.CreateCommentRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	comment, err := h.commentService.Add(c.Request.Context(), taskID, userID, req.Body)
	if err != nil {
		respondError(c, h.logger, err, "failed to add comment")
		return
	}

	_ = c.JSON(201, dto.NewCommentResponse(comment))
}
