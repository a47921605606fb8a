package tasklist

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/teyra/teyra/internal/cycle"
	"github.com/teyra/teyra/internal/database/sqlc"
)

const maxTitleLength = 500

var (
	// ErrTaskNotFound is returned when a task does not exist or belongs to
	// another user.
	ErrTaskNotFound = errors.New("task not found")
	// ErrInvalidTitle is returned for empty or oversized titles.
	ErrInvalidTitle = errors.New("task title must be 1-500 characters")
	// ErrUserNotFound is returned when the user has no cycle state row.
	ErrUserNotFound = errors.New("user not found")
)

// Service provides the task CRUD surface that populates a user's cycle.
type Service struct {
	queries *sqlc.Queries
	logger  zerolog.Logger
}

// NewService creates a new task list service.
func NewService(queries *sqlc.Queries, logger zerolog.Logger) *Service {
	return &Service{
		queries: queries,
		logger:  logger.With().Str("component", "tasklist").Logger(),
	}
}

// Create adds a task to the user's current cycle.
func (s *Service) Create(ctx context.Context, userID, title string) (*cycle.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" || len(title) > maxTitleLength {
		return nil, ErrInvalidTitle
	}

	row, err := s.queries.CreateTask(ctx, sqlc.CreateTaskParams{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  title,
	})
	if err != nil {
		return nil, err
	}
	return taskFromRow(row), nil
}

// List returns the user's tasks for the current cycle in creation order.
func (s *Service) List(ctx context.Context, userID string) ([]cycle.Task, error) {
	rows, err := s.queries.ListTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks := make([]cycle.Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, *taskFromRow(row))
	}
	return tasks, nil
}

// Complete marks a task completed. The daily and lifetime completion
// counters are bumped exactly once per task: the guarded UPDATE only
// matches an uncompleted row, so repeating the call is a no-op.
func (s *Service) Complete(ctx context.Context, userID, taskID string) (*cycle.Task, error) {
	row, err := s.queries.CompleteTask(ctx, sqlc.CompleteTaskParams{
		ID:     taskID,
		UserID: userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Already completed, or not this user's task.
			existing, getErr := s.queries.GetTask(ctx, sqlc.GetTaskParams{ID: taskID, UserID: userID})
			if getErr != nil {
				return nil, ErrTaskNotFound
			}
			return taskFromRow(existing), nil
		}
		return nil, err
	}

	if _, err := s.queries.IncrementTaskCompletion(ctx, userID); err != nil {
		// The task is already marked; losing the counter bump would
		// undercount, so surface the failure.
		return nil, err
	}

	return taskFromRow(row), nil
}

// Delete removes a single task from the current cycle.
func (s *Service) Delete(ctx context.Context, userID, taskID string) error {
	rows, err := s.queries.DeleteTask(ctx, sqlc.DeleteTaskParams{
		ID:     taskID,
		UserID: userID,
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func taskFromRow(row *sqlc.Task) *cycle.Task {
	return &cycle.Task{
		ID:        row.ID,
		UserID:    row.UserID,
		Title:     row.Title,
		Completed: row.Completed,
		CreatedAt: row.CreatedAt,
	}
}
