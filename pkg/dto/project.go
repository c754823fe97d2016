package dto

import (
	"time"

	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type ProjectResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	LeaderID    uuid.UUID `json:"leader_id"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

type MemberResponse struct {
	UserID   uuid.UUID    `json:"user_id"`
	JoinedAt time.Time    `json:"joined_at"`
	User     *UserSummary `json:"user,omitempty"`
}

type AuthorizationResponse struct {
	ProjectID       uuid.UUID `json:"project_id"`
	IsMember        bool      `json:"is_member"`
	IsLeaderOrAdmin bool      `json:"is_leader_or_admin"`
	Roles           []string  `json:"roles"`
}

func NewProjectResponse(p *models.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		LeaderID:    p.LeaderID,
		MemberCount: p.MemberCount,
		CreatedAt:   p.CreatedAt,
	}
}

func NewProjectResponses(projects []models.Project) []ProjectResponse {
	response := make([]ProjectResponse, len(projects))
	for i := range projects {
		response[i] = NewProjectResponse(&projects[i])
	}
	return response
}
