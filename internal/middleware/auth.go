package middleware

import (
	"errors"
	"strings"

	"github.com/dimitrije/taskhub-api/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserRolesKey = "user_roles"
)

type AccessTokenValidator interface {
	ValidateAccessToken(token string) (*services.Claims, error)
}

func Auth(validator AccessTokenValidator) drift.HandlerFunc {
	return func(c *drift.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Unauthorized("missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.Unauthorized("invalid authorization header format")
			return
		}

		claims, err := validator.ValidateAccessToken(parts[1])
		if err != nil {
			if errors.Is(err, services.ErrExpiredToken) {
				c.Unauthorized("token expired")
				return
			}
			c.Unauthorized("invalid token")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRolesKey, claims.Roles)

		c.Next()
	}
}

func GetUserID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(UserIDKey); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}

func GetUserEmail(c *drift.Context) string {
	if email, ok := c.Get(UserEmailKey); ok {
		if e, ok := email.(string); ok {
			return e
		}
	}
	return ""
}

// GetUserRoles returns the global roles carried by the access token.
func GetUserRoles(c *drift.Context) []string {
	if roles, ok := c.Get(UserRolesKey); ok {
		if r, ok := roles.([]string); ok {
			return r
		}
	}
	return nil
}
