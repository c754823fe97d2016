package testutil

import (
	"context"
	"time"

	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/dimitrije/taskhub-api/internal/services"
	"github.com/dimitrije/taskhub-api/internal/sse"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	args := m.Called(ctx, email, password, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Verify(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GlobalRoles(ctx context.Context, id uuid.UUID) ([]models.Role, error) {
	args := m.Called(ctx, id)
	roles, _ := args.Get(0).([]models.Role)
	return roles, args.Error(1)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) RotateRefreshToken(ctx context.Context, oldHash, newHash string, expiresAt time.Time) (uuid.UUID, error) {
	args := m.Called(ctx, oldHash, newHash, expiresAt)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockTokenService) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockJWTService mocks the JWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateTokenPair(userID uuid.UUID, email string, roles ...string) (*services.TokenPair, error) {
	args := m.Called(userID, email, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenPair), args.Error(1)
}

func (m *MockJWTService) ValidateRefreshToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockJWTService) RefreshExpiry() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

// MockProjectService mocks the ProjectService
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) Create(ctx context.Context, name, description string, creatorID uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, name, description, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) GetByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) List(ctx context.Context) ([]models.Project, error) {
	args := m.Called(ctx)
	projects, _ := args.Get(0).([]models.Project)
	return projects, args.Error(1)
}

func (m *MockProjectService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	args := m.Called(ctx, userID)
	projects, _ := args.Get(0).([]models.Project)
	return projects, args.Error(1)
}

func (m *MockProjectService) Update(ctx context.Context, projectID, actorID uuid.UUID, name, description string) (*models.Project, error) {
	args := m.Called(ctx, projectID, actorID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Members(ctx context.Context, projectID, actorID uuid.UUID) ([]models.ProjectMembership, error) {
	args := m.Called(ctx, projectID, actorID)
	members, _ := args.Get(0).([]models.ProjectMembership)
	return members, args.Error(1)
}

func (m *MockProjectService) RemoveMember(ctx context.Context, projectID, userID, actorID uuid.UUID) error {
	args := m.Called(ctx, projectID, userID, actorID)
	return args.Error(0)
}

// MockAuthorizationService mocks the AuthorizationService
type MockAuthorizationService struct {
	mock.Mock
}

func (m *MockAuthorizationService) IsMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, projectID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthorizationService) IsLeaderOrAdmin(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, projectID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAuthorizationService) ProjectRoles(ctx context.Context, projectID, userID uuid.UUID) ([]models.Role, error) {
	args := m.Called(ctx, projectID, userID)
	roles, _ := args.Get(0).([]models.Role)
	return roles, args.Error(1)
}

// MockCouponService mocks the CouponService
type MockCouponService struct {
	mock.Mock
}

func (m *MockCouponService) Issue(ctx context.Context, projectID, requestingUserID, issuerID uuid.UUID) (*models.JoinCoupon, error) {
	args := m.Called(ctx, projectID, requestingUserID, issuerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JoinCoupon), args.Error(1)
}

// MockJoinRequestService mocks the JoinRequestService
type MockJoinRequestService struct {
	mock.Mock
}

func (m *MockJoinRequestService) Submit(ctx context.Context, projectID uuid.UUID, code string, userID uuid.UUID) (*models.JoinProjectRequest, error) {
	args := m.Called(ctx, projectID, code, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JoinProjectRequest), args.Error(1)
}

func (m *MockJoinRequestService) ListByStatus(ctx context.Context, projectID uuid.UUID, status models.JoinRequestStatus) ([]models.JoinProjectRequest, error) {
	args := m.Called(ctx, projectID, status)
	requests, _ := args.Get(0).([]models.JoinProjectRequest)
	return requests, args.Error(1)
}

func (m *MockJoinRequestService) Decide(ctx context.Context, requestID uuid.UUID, outcome models.JoinRequestStatus, deciderID uuid.UUID) (*models.JoinProjectRequest, error) {
	args := m.Called(ctx, requestID, outcome, deciderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JoinProjectRequest), args.Error(1)
}

// MockTaskService mocks the TaskService
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) Create(ctx context.Context, projectID, actorID uuid.UUID, title, description string, dueDate *time.Time) (*models.Task, error) {
	args := m.Called(ctx, projectID, actorID, title, description, dueDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) GetByID(ctx context.Context, taskID, actorID uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, taskID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) ListByProject(ctx context.Context, projectID, actorID uuid.UUID) ([]models.Task, error) {
	args := m.Called(ctx, projectID, actorID)
	tasks, _ := args.Get(0).([]models.Task)
	return tasks, args.Error(1)
}

func (m *MockTaskService) Assign(ctx context.Context, taskID, assigneeID, actorID uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, taskID, assigneeID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) UpdateProgress(ctx context.Context, taskID uuid.UUID, progress int, actorID uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, taskID, progress, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

// MockCommentService mocks the CommentService
type MockCommentService struct {
	mock.Mock
}

func (m *MockCommentService) Add(ctx context.Context, taskID, authorID uuid.UUID, body string) (*models.TaskComment, error) {
	args := m.Called(ctx, taskID, authorID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TaskComment), args.Error(1)
}

func (m *MockCommentService) List(ctx context.Context, taskID, actorID uuid.UUID) ([]models.TaskComment, error) {
	args := m.Called(ctx, taskID, actorID)
	comments, _ := args.Get(0).([]models.TaskComment)
	return comments, args.Error(1)
}

// MockCouponNotifier mocks the EmailService coupon mail
type MockCouponNotifier struct {
	mock.Mock
}

func (m *MockCouponNotifier) SendCoupon(to, projectName, leaderName, code string) {
	m.Called(to, projectName, leaderName, code)
}

// MockProjectFeed mocks the ProjectFeed
type MockProjectFeed struct {
	mock.Mock
}

func (m *MockProjectFeed) Subscribe(userID uuid.UUID) *sse.Subscriber {
	args := m.Called(userID)
	return args.Get(0).(*sse.Subscriber)
}

func (m *MockProjectFeed) Unsubscribe(sub *sse.Subscriber) {
	m.Called(sub)
}
