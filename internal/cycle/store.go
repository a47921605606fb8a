package cycle

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/teyra/teyra/internal/database/sqlc"
)

// Store is the persistence contract the coordinator depends on. Lock
// acquisition and the rollover commit must be single atomic statements;
// the coordinator never does read-modify-write on shared state.
type Store interface {
	GetState(ctx context.Context, userID string) (*State, error)
	TryLock(ctx context.Context, userID string) (bool, error)
	Unlock(ctx context.Context, userID string) error
	ListTasks(ctx context.Context, userID string) ([]Task, error)
	DeleteTasks(ctx context.Context, userID string) (int64, error)
	CommitRollover(ctx context.Context, userID string, resetAt time.Time) error
	ListUserIDs(ctx context.Context) ([]string, error)
}

// SQLStore implements Store on top of the sqlc query layer.
type SQLStore struct {
	queries *sqlc.Queries
}

// NewSQLStore creates a SQL-backed cycle store.
func NewSQLStore(queries *sqlc.Queries) *SQLStore {
	return &SQLStore{queries: queries}
}

func (s *SQLStore) GetState(ctx context.Context, userID string) (*State, error) {
	row, err := s.queries.GetCycleState(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return stateFromRow(row), nil
}

// TryLock attempts the CAS-style lock acquisition. It returns false when
// the row is already locked (or missing).
func (s *SQLStore) TryLock(ctx context.Context, userID string) (bool, error) {
	rows, err := s.queries.TryLockCycleState(ctx, userID)
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// Unlock clears the lock flag. Unlocking an already-unlocked row is not an
// error; the caller only needs the flag down.
func (s *SQLStore) Unlock(ctx context.Context, userID string) error {
	_, err := s.queries.UnlockCycleState(ctx, userID)
	return err
}

func (s *SQLStore) ListTasks(ctx context.Context, userID string) ([]Task, error) {
	rows, err := s.queries.ListTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	tasks := make([]Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, Task{
			ID:        row.ID,
			UserID:    row.UserID,
			Title:     row.Title,
			Completed: row.Completed,
			CreatedAt: row.CreatedAt,
		})
	}
	return tasks, nil
}

func (s *SQLStore) DeleteTasks(ctx context.Context, userID string) (int64, error) {
	return s.queries.DeleteUserTasks(ctx, userID)
}

// CommitRollover zeroes the daily counters, advances last_reset_at and
// drops the lock in one statement.
func (s *SQLStore) CommitRollover(ctx context.Context, userID string, resetAt time.Time) error {
	rows, err := s.queries.CommitCycleRollover(ctx, sqlc.CommitCycleRolloverParams{
		LastResetAt: resetAt,
		UserID:      userID,
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListUserIDs(ctx context.Context) ([]string, error) {
	return s.queries.ListUserIDs(ctx)
}

func stateFromRow(row *sqlc.UserCycleState) *State {
	return &State{
		UserID:               row.UserID,
		Email:                row.Email,
		NotificationsEnabled: row.NotificationsEnabled,
		LastResetAt:          row.LastResetAt,
		LifetimeCompleted:    row.LifetimeCompleted,
		DailyCompleted:       row.DailyCompleted,
		DailyMoodChecks:      row.DailyMoodChecks,
		DailyAISplits:        row.DailyAiSplits,
		DailyParses:          row.DailyParses,
		IsLocked:             row.IsLocked,
	}
}
