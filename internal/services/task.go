package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dimitrije/taskhub-api/internal/database"
	"github.com/dimitrije/taskhub-api/internal/models"
	"github.com/google/uuid"
)

type TaskService struct {
	db   *database.DB
	auth *AuthorizationService
}

func NewTaskService(db *database.DB, auth *AuthorizationService) *TaskService {
	return &TaskService{db: db, auth: auth}
}

const taskColumns = `id, project_id, title, description, status, progress, assignee_id, created_by, due_date, created_at, updated_at`

func scanTask(row interface{ Scan(dest ...any) error }, t *models.Task) error {
	return row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Progress,
		&t.AssigneeID, &t.CreatedBy, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
}

func (s *TaskService) Create(ctx context.Context, projectID, actorID uuid.UUID, title, description string, dueDate *time.Time) (*models.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if err := s.auth.requireLeaderOrAdmin(ctx, projectID, actorID); err != nil {
		return nil, err
	}

	var task models.Task
	err := scanTask(s.db.Pool.QueryRow(ctx, `
		INSERT INTO tasks (project_id, title, description, status, created_by, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+taskColumns,
		projectID, title, description, string(models.TaskTodo), actorID, dueDate,
	), &task)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &task, nil
}

func (s *TaskService) load(ctx context.Context, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := scanTask(s.db.Pool.QueryRow(ctx, `
		SELECT `+taskColumns+` FROM tasks WHERE id = $1
	`, taskID), &task)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

// GetByID is visible to members of the task's project.
func (s *TaskService) GetByID(ctx context.Context, taskID, actorID uuid.UUID) (*models.Task, error) {
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.requireMember(ctx, task.ProjectID, actorID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) ListByProject(ctx context.Context, projectID, actorID uuid.UUID) ([]models.Task, error) {
	if err := s.auth.requireMember(ctx, projectID, actorID); err != nil {
		return nil, err
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE project_id = $1
		ORDER BY due_date NULLS LAST, created_at
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := scanTask(rows, &t); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *TaskService) Assign(ctx context.Context, taskID, assigneeID, actorID uuid.UUID) (*models.Task, error) {
	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.auth.requireLeaderOrAdmin(ctx, task.ProjectID, actorID); err != nil {
		return nil, err
	}

	isMember, err := s.auth.IsMember(ctx, task.ProjectID, assigneeID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrAssigneeNotMember
	}

	err = scanTask(s.db.Pool.QueryRow(ctx, `
		UPDATE tasks SET assignee_id = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+taskColumns, assigneeID, taskID), task)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to assign task: %w", err)
	}
	return task, nil
}

// UpdateProgress is open to the assignee and to the project's leaders. The
// status follows the progress value.
func (s *TaskService) UpdateProgress(ctx context.Context, taskID uuid.UUID, progress int, actorID uuid.UUID) (*models.Task, error) {
	if progress < 0 || progress > 100 {
		return nil, ErrInvalidProgress
	}

	task, err := s.load(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if task.AssigneeID == nil || *task.AssigneeID != actorID {
		if err := s.auth.requireLeaderOrAdmin(ctx, task.ProjectID, actorID); err != nil {
			return nil, err
		}
	}

	err = scanTask(s.db.Pool.QueryRow(ctx, `
		UPDATE tasks SET progress = $1, status = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING `+taskColumns, progress, string(StatusForProgress(progress)), taskID), task)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}
	return task, nil
}

func StatusForProgress(progress int) models.TaskStatus {
	switch {
	case progress >= 100:
		return models.TaskDone
	case progress > 0:
		return models.TaskInProgress
	default:
		return models.TaskTodo
	}
}
