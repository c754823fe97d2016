package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dimitrije/taskhub-api/internal/database"
	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/google/uuid"
)

type CommentService struct {
	db    *database.DB
	auth  *AuthorizationService
	tasks *TaskService
}

func NewCommentService(db *database.DB, auth *AuthorizationService, tasks *TaskService) *CommentService {
	return &CommentService{db: db, auth: auth, tasks: tasks}
}

func (s *CommentService) Add(ctx context.Context, taskID, authorID uuid.UUID, body string) (*models.TaskComment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrBodyRequired
	}
	if _, err := s.tasks.GetByID(ctx, taskID, authorID); err != nil {
		return nil, err
	}

	var comment models.TaskComment
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO task_comments (task_id, author_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, task_id, author_id, body, created_at
	`, taskID, authorID, body).Scan(&comment.ID, &comment.TaskID, &comment.AuthorID, &comment.Body, &comment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return &comment, nil
}

func (s *CommentService) List(ctx context.Context, taskID, actorID uuid.UUID) ([]models.TaskComment, error) {
	if _, err := s.tasks.GetByID(ctx, taskID, actorID); err != nil {
		return nil, err
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT c.id, c.task_id, c.author_id, c.body, c.created_at,
		       u.id, u.email, u.name, u.active, u.created_at, u.updated_at
		FROM task_comments c
		JOIN users u ON c.author_id = u.id
		WHERE c.task_id = $1
		ORDER BY c.created_at
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.TaskComment
	for rows.Next() {
		var c models.TaskComment
		var u models.User
		if err := rows.Scan(
			&c.ID, &c.TaskID, &c.AuthorID, &c.Body, &c.CreatedAt,
			&u.ID, &u.Email, &u.Name, &u.Active, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		c.Author = &u
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
