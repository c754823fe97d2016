package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dimitrije/taskhub-api/internal/database"
	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthorizationService(t *testing.T) (*AuthorizationService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewAuthorizationService(db), mock
}

func expectLeaderCheck(mock pgxmock.PgxPoolIface, projectID, userID uuid.UUID, result bool) {
	mock.ExpectQuery(`SELECT EXISTS\(\s*SELECT 1 FROM user_project_roles`).
		WithArgs(projectID, userID, []string{"PROJECT_LEADER", "PROJECT_ADMIN"}).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(result))
}

func expectMemberCheck(mock pgxmock.PgxPoolIface, projectID, userID uuid.UUID, result bool) {
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM project_memberships`).
		WithArgs(projectID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(result))
}

func TestAuthorizationService_IsLeaderOrAdmin_True(t *testing.T) {
	svc, mock := setupAuthorizationService(t)
	projectID := uuid.New()
	userID := uuid.New()

	expectLeaderCheck(mock, projectID, userID, true)

	ok, err := svc.IsLeaderOrAdmin(context.Background(), projectID, userID)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorizationService_IsLeaderOrAdmin_ScopedToProject(t *testing.T) {
	svc, mock := setupAuthorizationService(t)
	projectA := uuid.New()
	projectB := uuid.New()
	leader := uuid.New()

	expectLeaderCheck(mock, projectA, leader, true)
	expectLeaderCheck(mock, projectB, leader, false)

	okA, err := svc.IsLeaderOrAdmin(context.Background(), projectA, leader)
	require.NoError(t, err)
	okB, err := svc.IsLeaderOrAdmin(context.Background(), projectB, leader)
	require.NoError(t, err)

	assert.True(t, okA)
	assert.False(t, okB)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorizationService_IsMember(t *testing.T) {
	svc, mock := setupAuthorizationService(t)
	projectID := uuid.New()
	userID := uuid.New()

	expectMemberCheck(mock, projectID, userID, false)

	ok, err := svc.IsMember(context.Background(), projectID, userID)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorizationService_IsMember_StorageError(t *testing.T) {
	svc, mock := setupAuthorizationService(t)
	projectID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM project_memberships`).
		WithArgs(projectID, userID).
		WillReturnError(errors.New("connection reset"))

	_, err := svc.IsMember(context.Background(), projectID, userID)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorizationService_HasPermission(t *testing.T) {
	svc, mock := setupAuthorizationService(t)
	projectID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT r.name FROM user_project_roles`).
		WithArgs(projectID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"name"}).AddRow(models.RoleProjectLeader))

	ok, err := svc.HasPermission(context.Background(), projectID, userID, models.PermissionDeleteMember)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorizationService_HasPermission_TeamMemberCannotDelete(t *testing.T) {
	svc, mock := setupAuthorizationService(t)
	projectID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT r.name FROM user_project_roles`).
		WithArgs(projectID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"name"}).AddRow(models.RoleTeamMember))

	ok, err := svc.HasPermission(context.Background(), projectID, userID, models.PermissionDeleteMember)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthorizationService_HasPermission_NoRoles(t *testing.T) {
	svc, mock := setupAuthorizationService(t)
	projectID := uuid.New()
	userID := uuid.New()

	mock.ExpectQuery(`SELECT r.name FROM user_project_roles`).
		WithArgs(projectID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"name"}))

	ok, err := svc.HasPermission(context.Background(), projectID, userID, models.PermissionRead)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}
