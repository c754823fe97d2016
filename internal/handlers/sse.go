package handlers

import (
	"context"

	"github.com/dimitrije/taskhub-api/internal/middleware"
	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/dimitrije/taskhub-api/internal/sse"
	"github.com/dimitrije/taskhub-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

type SnapshotLister interface {
	List(ctx context.Context) ([]models.Project, error)
}

type SSEHandler struct {
	feed     ProjectFeedInterface
	projects SnapshotLister
	logger   *zap.Logger
}

func NewSSEHandler(feed ProjectFeedInterface, projects SnapshotLister, logger *zap.Logger) *SSEHandler {
	return &SSEHandler{
		feed:     feed,
		projects: projects,
		logger:   logger,
	}
}

// Stream sends every existing project as one snapshot event, then each
// project created afterwards. The subscription is taken before the snapshot
// is read so no creation falls between the two.
func (h *SSEHandler) Stream(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	ctx := c.Request.Context()

	sub := h.feed.Subscribe(userID)
	defer h.feed.Unsubscribe(sub)

	projects, err := h.projects.List(ctx)
	if err != nil {
		respondError(c, h.logger, err, "failed to load projects")
		return
	}

	sseCtx := c.SSE()

	if err := sseCtx.SendJSON(sse.Event{
		Type: sse.EventSnapshot,
		Data: dto.NewProjectResponses(projects),
	}, sse.EventSnapshot, ""); err != nil {
		return
	}

	for {
		select {
		case msg, ok := <-sub.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), sse.EventProjectCreated, ""); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
