package cycle

import (
	"errors"
	"math"
	"time"
)

// ErrNotFound is returned when no cycle state exists for a user.
// Callers are expected to provision state (users.Service.Ensure) first.
var ErrNotFound = errors.New("cycle state not found")

// Status describes the outcome of a reset attempt.
type Status string

const (
	// StatusReset means a rollover was performed.
	StatusReset Status = "reset"
	// StatusNotDue means the current cycle has not elapsed yet.
	StatusNotDue Status = "not_due"
	// StatusInProgress means another trigger holds the reset lock.
	StatusInProgress Status = "in_progress"
)

// State is a user's cycle row: daily counters, lifetime counters and the
// reset bookkeeping fields.
type State struct {
	UserID               string    `json:"userId"`
	Email                string    `json:"email"`
	NotificationsEnabled bool      `json:"notificationsEnabled"`
	LastResetAt          time.Time `json:"lastResetAt"`
	LifetimeCompleted    int64     `json:"lifetimeCompleted"`
	DailyCompleted       int64     `json:"dailyCompleted"`
	DailyMoodChecks      int64     `json:"dailyMoodChecks"`
	DailyAISplits        int64     `json:"dailyAiSplits"`
	DailyParses          int64     `json:"dailyParses"`
	IsLocked             bool      `json:"-"`
}

// Task is a single to-do item within a cycle. Tasks never survive a
// rollover.
type Task struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

// Summary is the snapshot computed at rollover time. It is never persisted;
// it exists only to be returned to the caller and mailed to the user.
type Summary struct {
	Total             int     `json:"total"`
	Completed         int     `json:"completed"`
	Pending           int     `json:"pending"`
	CompletionRate    float64 `json:"completionRate"`
	LifetimeCompleted int64   `json:"lifetimeCompleted"`
}

// Outcome is the result of a CheckAndReset or ForceReset call.
type Outcome struct {
	Status    Status        `json:"status"`
	Remaining time.Duration `json:"-"`
	Summary   *Summary      `json:"summary,omitempty"`
}

// Summarize computes the completion summary for a cycle's task set.
// The rate is a percentage with one decimal of precision.
func Summarize(tasks []Task, lifetimeCompleted int64) Summary {
	s := Summary{
		Total:             len(tasks),
		LifetimeCompleted: lifetimeCompleted,
	}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	if s.Total > 0 {
		s.CompletionRate = math.Round(float64(s.Completed)/float64(s.Total)*1000) / 10
	}
	return s
}
