package handlers

import (
	"context"
	"time"

	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/dimitrije/taskhub-api/internal/services"
	"github.com/dimitrije/taskhub-api/internal/sse"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Verify(ctx context.Context, token string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, name string) (*models.User, error)
	GlobalRoles(ctx context.Context, id uuid.UUID) ([]models.Role, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	RotateRefreshToken(ctx context.Context, oldHash, newHash string, expiresAt time.Time) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string, roles ...string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// ProjectServiceInterface defines the methods used by handlers from ProjectService
type ProjectServiceInterface interface {
	Create(ctx context.Context, name, description string, creatorID uuid.UUID) (*models.Project, error)
	GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	List(ctx context.Context) ([]models.Project, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	Update(ctx context.Context, projectID, actorID uuid.UUID, name, description string) (*models.Project, error)
	Members(ctx context.Context, projectID, actorID uuid.UUID) ([]models.ProjectMembership, error)
	RemoveMember(ctx context.Context, projectID, userID, actorID uuid.UUID) error
}

// AuthorizationServiceInterface defines the methods used by handlers from AuthorizationService
type AuthorizationServiceInterface interface {
	IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
	IsLeaderOrAdmin(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
	ProjectRoles(ctx context.Context, projectID, userID uuid.UUID) ([]models.Role, error)
}

// CouponServiceInterface defines the methods used by handlers from CouponService
type CouponServiceInterface interface {
	Issue(ctx context.Context, projectID, requestingUserID, issuerID uuid.UUID) (*models.JoinCoupon, error)
}

// JoinRequestServiceInterface defines the methods used by handlers from JoinRequestService
type JoinRequestServiceInterface interface {
	Submit(ctx context.Context, projectID uuid.UUID, code string, userID uuid.UUID) (*models.JoinProjectRequest, error)
	ListByStatus(ctx context.Context, projectID uuid.UUID, status models.JoinRequestStatus) ([]models.JoinProjectRequest, error)
	Decide(ctx context.Context, requestID uuid.UUID, outcome models.JoinRequestStatus, deciderID uuid.UUID) (*models.JoinProjectRequest, error)
}

// TaskServiceInterface defines the methods used by handlers from TaskService
type TaskServiceInterface interface {
	Create(ctx context.Context, projectID, actorID uuid.UUID, title, description string, dueDate *time.Time) (*models.Task, error)
	GetByID(ctx context.Context, taskID, actorID uuid.UUID) (*models.Task, error)
	ListByProject(ctx context.Context, projectID, actorID uuid.UUID) ([]models.Task, error)
	Assign(ctx context.Context, taskID, assigneeID, actorID uuid.UUID) (*models.Task, error)
	UpdateProgress(ctx context.Context, taskID uuid.UUID, progress int, actorID uuid.UUID) (*models.Task, error)
}

// CommentServiceInterface defines the methods used by handlers from CommentService
type CommentServiceInterface interface {
	Add(ctx context.Context, taskID, authorID uuid.UUID, body string) (*models.TaskComment, error)
	List(ctx context.Context, taskID, actorID uuid.UUID) ([]models.TaskComment, error)
}

// CouponNotifierInterface defines the methods used by handlers from EmailService
type CouponNotifierInterface interface {
	SendCoupon(to, projectName, leaderName, code string)
}

// ProjectFeedInterface defines the methods used by handlers from the ProjectFeed
type ProjectFeedInterface interface {
	Subscribe(userID uuid.UUID) *sse.Subscriber
	Unsubscribe(sub *sse.Subscriber)
}
