package handlers

import (
	"errors"

	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/dimitrije/taskhub-api/internal/services"
	"github.com/dimitrije/taskhub-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

// respondError writes the status that matches the error kind. Errors of no
// known kind are logged and reported as msg with a 500.
func respondError(c *drift.Context, logger *zap.Logger, err error, msg string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.NotFound(err.Error())
	case errors.Is(err, services.ErrForbidden):
		c.Forbidden(err.Error())
	case errors.Is(err, services.ErrAlreadyExists):
		_ = c.JSON(409, dto.ErrorResponse{Code: "ALREADY_EXISTS", Message: err.Error()})
	case errors.Is(err, services.ErrInvalidState):
		_ = c.JSON(409, dto.ErrorResponse{Code: "INVALID_STATE", Message: err.Error()})
	case errors.Is(err, services.ErrConflict):
		_ = c.JSON(409, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, services.ErrInvalidCoupon), errors.Is(err, services.ErrValidation):
		c.BadRequest(err.Error())
	case errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrExpiredToken),
		errors.Is(err, services.ErrInvalidCredentials):
		c.Unauthorized(err.Error())
	default:
		logger.Error(msg,
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.InternalServerError(msg)
	}
}

func roleNames(roles []models.Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return names
}
