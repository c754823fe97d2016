package handlers

import (
	"context"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Check(c *drift.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		_ = c.JSON(503, map[string]string{"status": "unavailable"})
		return
	}
	_ = c.JSON(200, map[string]string{"status": "ok"})
}
