package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/dimitrije/taskhub-api/internal/services"
	"github.com/dimitrije/taskhub-api/pkg/dto"
	"github.com/dimitrije/taskhub-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupProjectTest(t *testing.T) (*testutil.MockProjectService, *testutil.MockAuthorizationService, *ProjectHandler) {
	t.Helper()
	mockProjectService := new(testutil.MockProjectService)
	mockAuthService := new(testutil.MockAuthorizationService)
	handler := NewProjectHandler(mockProjectService, mockAuthService, zap.NewNop())
	return mockProjectService, mockAuthService, handler
}

func TestProjectHandler_Create_Success(t *testing.T) {
	mockProjectService, _, handler := setupProjectTest(t)
	userID := uuid.New()
	project := &models.Project{ID: uuid.New(), Name: "Alpha", LeaderID: userID, MemberCount: 1, CreatedAt: time.Now()}

	mockProjectService.On("Create", mock.Anything, "Alpha", "first one", userID).Return(project, nil)

	app := newTestApp(true, route{http.MethodPost, "/projects", handler.Create})
	rec := testutil.NewHTTPTestClient(t, app).Request(http.MethodPost, "/projects", dto.CreateProjectRequest{Name: "Alpha", Description: "first one"}, userID)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var response dto.ProjectResponse
	testutil.ParseJSON(t, rec, &response)
	assert.Equal(t, project.ID, response.ID)
	assert.Equal(t, 1, response.MemberCount)
	assert.Equal(t, userID, response.LeaderID)
	mockProjectService.AssertExpectations(t)
}

func TestProjectHandler_Create_NameTaken(t *testing.T) {
	mockProjectService, _, handler := setupProjectTest(t)
	userID := uuid.New()

	mockProjectService.On("Create", mock.Anything, "alpha", "", userID).Return(nil, services.ErrProjectNameTaken)

	app := newTestApp(true, route{http.MethodPost, "/projects", handler.Create})
	rec := testutil.NewHTTPTestClient(t, app).Request(http.MethodPost, "/projects", dto.CreateProjectRequest{Name: "alpha"}, userID)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProjectHandler_List_Scopes(t *testing.T) {
	mockProjectService, _, handler := setupProjectTest(t)
	userID := uuid.New()
	mine := []models.Project{{ID: uuid.New(), Name: "Mine"}}
	all := []models.Project{mine[0], {ID: uuid.New(), Name: "Other"}}

	mockProjectService.On("ListForUser", mock.Anything, userID).Return(mine, nil)
	mockProjectService.On("List", mock.Anything).Return(all, nil)

	app := newTestApp(true, route{http.MethodGet, "/projects", handler.List})

	var response []dto.ProjectResponse
	rec := testutil.NewHTTPTestClient(t, app).Request(http.MethodGet, "/projects", nil, userID)
	require.Equal(t, http.StatusOK, rec.Code)
	testutil.ParseJSON(t, rec, &response)
	assert.Len(t, response, 1)

	rec = testutil.NewHTTPTestClient(t, app).Request(http.MethodGet, "/projects?scope=all", nil, userID)
	require.Equal(t, http.StatusOK, rec.Code)
	testutil.ParseJSON(t, rec, &response)
	assert.Len(t, response, 2)
}

func TestProjectHandler_Get_NotFound(t *testing.T) {
	mockProjectService, _, handler := setupProjectTest(t)
	projectID := uuid.New()

	mockProjectService.On("GetByID", mock.Anything, projectID).Return(nil, services.ErrProjectNotFound)

	app := newTestApp(true, route{http.MethodGet, "/projects/:id", handler.Get})

	rec := testutil.NewHTTPTestClient(t, app).Request(http.MethodGet, "/projects/"+projectID.String(), nil, uuid.New())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = testutil.NewHTTPTestClient(t, app).Request(http.MethodGet, "/projects/not-a-uuid", nil, uuid.New())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProjectHandler_Update_KeepsUnsetFields(t *testing.T) {
	mockProjectService, _, handler := setupProjectTest(t)
	userID := uuid.New()
	current := &models.Project{ID: uuid.New(), Name: "Alpha", Description: "keep me"}
	updated := &models.Project{ID: current.ID, Name: "Alpha 2", Description: "keep me"}
	name := "Alpha 2"

	mockProjectService.On("GetByID", mock.Anything, current.ID).Return(current, nil)
	mockProjectService.On("Update", mock.Anything, current.ID, userID, "Alpha 2", "keep me").Return(updated, nil)

	app := newTestApp(true, route{http.MethodPatch, "/projects/:id", handler.Update})
	rec := testutil.NewHTTPTestClient(t, app).Request(http.MethodPatch, "/projects/"+current.ID.String(), dto.UpdateProjectRequest{Name: &name}, userID)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockProjectService.AssertExpectations(t)
}

func TestProjectHandler_Update_Forbidden(t *testing.T) {
	mockProjectService, _, handler := setupProjectTest(t)
	userID := uuid.New()
	current := &models.Project{ID: uuid.New(), Name: "Alpha"}
	description := "new"

	mockProjectService.On("GetByID", mock.Anything, current.ID).Return(current, nil)
	mockProjectService.On("Update", mock.Anything, current.ID, userID, "Alpha", "new").Return(nil, services.ErrNotLeaderOrAdmin)

	app := newTestApp(true, route{http.MethodPatch, "/projects/:id", handler.Update})
	rec := testutil.NewHTTPTestClient(t, app).Request(http.MethodPatch, "/projects/"+current.ID.String(), dto.UpdateProjectRequest{Description: &description}, userID)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProjectHandler_Members(t *testing.T) {
	mockProjectService, _, handler := setupProjectTest(t)
	userID := uuid.New()
	projectID := uuid.New()
	members := []models.ProjectMembership{{
		ID:        uuid.New(),
		UserID:    userID,
		ProjectID: projectID,
		CreatedAt: time.Now(),
		User:      &models.User{ID: userID, Email: "ana@example.com", Name: "Ana"},
	}}

	mockProjectService.On("Members", mock.Anything, projectID, userID).Return(members, nil)

	app := newTestApp(true, route{http.MethodGet, "/projects/:id/members", handler.Members})
	rec := testutil.NewHTTPTestClient(t, app).Request(http.MethodGet, "/projects/"+projectID.String()+"/members", nil, userID)

	assert.Equal(t, http.StatusOK, rec.Code)
	var response []dto.MemberResponse
	testutil.ParseJSON(t, rec, &response)
	require.Len(t, response, 1)
	assert.Equal(t, "ana@example.com", response[0].User.Email)
}

func TestProjectHandler_RemoveMember_Leader(t *testing.T) {
	mockProjectService, _, handler := setupProjectTest(t)
	actorID := uuid.New()
	projectID := uuid.New()
	leaderID := uuid.New()

	mockProjectService.On("RemoveMember", mock.Anything, projectID, leaderID, actorID).Return(services.ErrCannotRemoveLeader)

	app := newTestApp(true, route{http.MethodDelete, "/projects/:id/members/:userId", handler.RemoveMember})
	path := "/projects/" + projectID.String() + "/members/" + leaderID.String()
	rec := testutil.NewHTTPTestClient(t, app).Request(http.MethodDelete, path, nil, actorID)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProjectHandler_Authorization(t *testing.T) {
	mockProjectService, mockAuthService, handler := setupProjectTest(t)
	userID := uuid.New()
	projectID := uuid.New()

	mockProjectService.On("GetByID", mock.Anything, projectID).Return(&models.Project{ID: projectID}, nil)
	mockAuthService.On("IsMember", mock.Anything, projectID, userID).Return(true, nil)
	mockAuthService.On("IsLeaderOrAdmin", mock.Anything, projectID, userID).Return(false, nil)
	mockAuthService.On("ProjectRoles", mock.Anything, projectID, userID).Return([]models.Role{models.RoleTeamMember}, nil)

	app := newTestApp(true, route{http.MethodGet, "/projects/:id/authorization", handler.Authorization})
	rec := testutil.NewHTTPTestClient(t, app).Request(http.MethodGet, "/projects/"+projectID.String()+"/authorization", nil, userID)

	assert.Equal(t, http.StatusOK, rec.Code)
	var response dto.AuthorizationResponse
	testutil.ParseJSON(t, rec, &response)
	assert.True(t, response.IsMember)
	assert.False(t, response.IsLeaderOrAdmin)
	assert.Equal(t, []string{"TEAM_MEMBER"}, response.Roles)
	mockAuthService.AssertExpectations(t)
}
