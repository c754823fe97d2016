package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/dimitrije/taskhub-api/internal/database"
	"github.com/dimitrije/taskhub-api/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the plain-text password of every fixture user
const DefaultPassword = "password123"

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates an active test user holding the global TEAM_MEMBER role
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:  fmt.Sprintf("user%d@example.com", f.counter),
		Name:   fmt.Sprintf("Test User %d", f.counter),
		Active: true,
	}

	for _, opt := range opts {
		opt(user)
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	ctx := context.Background()
	err = f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_digest, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, name, password_digest, active, created_at, updated_at
	`, user.Email, user.Name, string(digest), user.Active).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordDigest,
		&user.Active, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	_, err = f.db.Pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2
	`, user.ID, string(models.RoleTeamMember))
	if err != nil {
		t.Fatalf("failed to grant global role: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// Inactive creates the user without a verified account
func Inactive() UserOption {
	return func(u *models.User) {
		u.Active = false
	}
}

// MemberCount reads the stored member count of a project
func (f *Fixtures) MemberCount(t *testing.T, project *models.Project) int {
	t.Helper()

	var count int
	err := f.db.Pool.QueryRow(context.Background(),
		`SELECT member_count FROM projects WHERE id = $1`, project.ID).Scan(&count)
	if err != nil {
		t.Fatalf("failed to read member count: %v", err)
	}
	return count
}

// CountRows counts rows in a table matching an optional WHERE clause
func (f *Fixtures) CountRows(t *testing.T, table, where string, args ...any) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}

	var count int
	if err := f.db.Pool.QueryRow(context.Background(), query, args...).Scan(&count); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return count
}
