package dto

import (
	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/google/uuid"
)

type UserResponse struct {
	ID     uuid.UUID `json:"id"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Active bool      `json:"active"`
	Roles  []string  `json:"roles,omitempty"`
}

type UpdateUserRequest struct {
	Name string `json:"name"`
}

// UserSummary is the short form embedded in members, requests and comments.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
}

func NewUserResponse(user *models.User, roles []models.Role) UserResponse {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return UserResponse{
		ID:     user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Active: user.Active,
		Roles:  names,
	}
}

func NewUserSummary(user *models.User) *UserSummary {
	if user == nil {
		return nil
	}
	return &UserSummary{ID: user.ID, Email: user.Email, Name: user.Name}
}
