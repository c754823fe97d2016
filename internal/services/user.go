package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/dimitrije/taskhub-api/internal/database"
	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/google/uuid"
)

type verificationNotifier interface {
	SendVerification(to, name, verifyURL string)
}

type UserService struct {
	db                 *database.DB
	hasher             *PasswordHasher
	notifier           verificationNotifier
	baseURL            string
	verificationExpiry time.Duration
}

func NewUserService(db *database.DB, hasher *PasswordHasher, notifier verificationNotifier, baseURL string, verificationExpiry time.Duration) *UserService {
	return &UserService{
		db:                 db,
		hasher:             hasher,
		notifier:           notifier,
		baseURL:            strings.TrimRight(baseURL, "/"),
		verificationExpiry: verificationExpiry,
	}
}

const userColumns = `id, email, name, password_digest, active, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }, u *models.User) error {
	return row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordDigest, &u.Active, &u.CreatedAt, &u.UpdatedAt)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// cleanName trims a display name. Names end up in mail headers, so control
// characters are refused.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return "", ErrNameInvalid
	}
	return name, nil
}

// Register creates an inactive account holding the global TEAM_MEMBER role
// and emails a one-shot verification link.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	name, err = cleanName(name)
	if err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	token, err := generateVerificationToken()
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var user models.User
	err = scanUser(tx.QueryRow(ctx, `
		INSERT INTO users (email, name, password_digest)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns, email, name, digest), &user)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2
	`, user.ID, string(models.RoleTeamMember)); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO verification_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, user.ID, HashToken(token), time.Now().Add(s.verificationExpiry)); err != nil {
		return nil, fmt.Errorf("failed to store verification token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if s.notifier != nil {
		s.notifier.SendVerification(user.Email, user.Name, s.verifyURL(token))
	}

	return &user, nil
}

func (s *UserService) verifyURL(token string) string {
	return s.baseURL + "/api/v1/auth/verify?token=" + url.QueryEscape(token)
}

// Verify redeems a verification token and activates its owner. The token is
// deleted in the same transaction, so it cannot activate twice.
func (s *UserService) Verify(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var userID uuid.UUID
	err = tx.QueryRow(ctx, `
		DELETE FROM verification_tokens
		WHERE token_hash = $1 AND expires_at > NOW()
		RETURNING user_id
	`, HashToken(token)).Scan(&userID)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to redeem verification token: %w", err)
	}

	var user models.User
	err = scanUser(tx.QueryRow(ctx, `
		UPDATE users SET active = TRUE, updated_at = NOW()
		WHERE id = $1
		RETURNING `+userColumns, userID), &user)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to activate user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &user, nil
}

// Authenticate checks credentials. Inactive accounts may still sign in.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrInvalidEmail) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Matches(user.PasswordDigest, password)
	if err != nil {
		return nil, fmt.Errorf("failed to check password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := scanUser(s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id), &user)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = scanUser(s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE email = $1
	`, email), &user)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = scanUser(s.db.Pool.QueryRow(ctx, `
		UPDATE users SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+userColumns, name, id), &user)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GlobalRoles(ctx context.Context, id uuid.UUID) ([]models.Role, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT r.name FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// GrantGlobalRole is idempotent. It reports whether the role was newly granted.
func (s *UserService) GrantGlobalRole(ctx context.Context, id uuid.UUID, role models.Role) (bool, error) {
	if !role.IsValid() {
		return false, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	result, err := s.db.Pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2
		ON CONFLICT (user_id, role_id) DO NOTHING
	`, id, string(role))
	if err != nil {
		return false, fmt.Errorf("failed to grant role: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

func generateVerificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
