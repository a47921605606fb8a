package cycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultLength is the cycle length between rollovers.
	DefaultLength = 24 * time.Hour
	// DefaultCommitRetries bounds retries of the rollover commit.
	DefaultCommitRetries = 3
)

// Notifier delivers the end-of-cycle summary. Delivery failures never fail
// the reset itself.
type Notifier interface {
	SendCycleSummary(ctx context.Context, userID, email string, summary Summary) error
}

// Options configures a Coordinator.
type Options struct {
	// Length is the cycle length. Zero means DefaultLength.
	Length time.Duration
	// LockTTL is how old a held lock may be (measured from last_reset_at)
	// before it is considered abandoned and reclaimed. Zero means twice
	// the cycle length.
	LockTTL time.Duration
	// CommitRetries bounds retries of the rollover commit. Zero means
	// DefaultCommitRetries.
	CommitRetries int
}

// Coordinator owns the daily reset lifecycle. It is the single place that
// decides whether a user's cycle has elapsed and performs the rollover;
// every trigger (dashboard load, scheduled sweep, admin action) goes
// through it.
type Coordinator struct {
	store    Store
	notifier Notifier
	logger   zerolog.Logger

	length        time.Duration
	lockTTL       time.Duration
	commitRetries int
}

// NewCoordinator creates a reset coordinator.
func NewCoordinator(store Store, opts Options, logger zerolog.Logger) *Coordinator {
	length := opts.Length
	if length <= 0 {
		length = DefaultLength
	}
	lockTTL := opts.LockTTL
	if lockTTL <= 0 {
		lockTTL = 2 * length
	}
	retries := opts.CommitRetries
	if retries <= 0 {
		retries = DefaultCommitRetries
	}

	return &Coordinator{
		store:         store,
		logger:        logger.With().Str("component", "cycle").Logger(),
		length:        length,
		lockTTL:       lockTTL,
		commitRetries: retries,
	}
}

// SetNotifier attaches the summary notifier. Without one, resets simply
// skip the notification step.
func (c *Coordinator) SetNotifier(n Notifier) {
	c.notifier = n
}

// Length returns the configured cycle length.
func (c *Coordinator) Length() time.Duration {
	return c.length
}

// CheckAndReset rolls the user over to a new cycle if the current one has
// elapsed. It is safe to call redundantly: a user who was just reset gets
// StatusNotDue, and concurrent calls for the same user race on an atomic
// lock so at most one of them performs the rollover.
func (c *Coordinator) CheckAndReset(ctx context.Context, userID string) (*Outcome, error) {
	st, err := c.store.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(st.LastResetAt)
	if elapsed < c.length {
		return &Outcome{Status: StatusNotDue, Remaining: c.length - elapsed}, nil
	}

	return c.rollover(ctx, st, elapsed, true)
}

// ForceReset performs a rollover regardless of how much of the cycle has
// elapsed. The lock guard still applies.
func (c *Coordinator) ForceReset(ctx context.Context, userID string) (*Outcome, error) {
	st, err := c.store.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.rollover(ctx, st, time.Since(st.LastResetAt), false)
}

// Status reports the user's state and the time remaining in the current
// cycle without side effects.
func (c *Coordinator) Status(ctx context.Context, userID string) (*State, time.Duration, error) {
	st, err := c.store.GetState(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	remaining := c.length - time.Since(st.LastResetAt)
	if remaining < 0 {
		remaining = 0
	}
	return st, remaining, nil
}

func (c *Coordinator) rollover(ctx context.Context, st *State, elapsed time.Duration, enforceGate bool) (*Outcome, error) {
	userID := st.UserID

	if st.IsLocked {
		if elapsed < c.lockTTL {
			return &Outcome{Status: StatusInProgress}, nil
		}
		// Locked but last_reset_at never advanced for over the TTL: the
		// holder died mid-reset. Reclaim so the user is not locked out
		// forever, then race for the lock normally.
		c.logger.Warn().
			Str("userId", userID).
			Dur("elapsed", elapsed).
			Msg("reclaiming stale cycle lock")
		if err := c.store.Unlock(ctx, userID); err != nil {
			return nil, fmt.Errorf("reclaim stale lock: %w", err)
		}
	}

	acquired, err := c.store.TryLock(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("acquire cycle lock: %w", err)
	}
	if !acquired {
		return &Outcome{Status: StatusInProgress}, nil
	}

	// Re-read under the lock. The pre-lock state may be stale: a racing
	// trigger can have completed a full rollover between our read and our
	// lock acquisition, in which case the cycle is fresh again.
	st, err = c.store.GetState(ctx, userID)
	if err != nil {
		c.unlock(ctx, userID)
		return nil, err
	}
	if enforceGate {
		if remaining := c.length - time.Since(st.LastResetAt); remaining > 0 {
			c.unlock(ctx, userID)
			return &Outcome{Status: StatusNotDue, Remaining: remaining}, nil
		}
	}

	tasks, err := c.store.ListTasks(ctx, userID)
	if err != nil {
		c.unlock(ctx, userID)
		return nil, fmt.Errorf("snapshot tasks: %w", err)
	}

	summary := Summarize(tasks, st.LifetimeCompleted)

	if _, err := c.store.DeleteTasks(ctx, userID); err != nil {
		c.unlock(ctx, userID)
		return nil, fmt.Errorf("clear tasks: %w", err)
	}

	resetAt := time.Now().UTC()
	if err := c.commit(ctx, userID, resetAt); err != nil {
		// Deleted tasks stay gone. last_reset_at was not advanced, so the
		// next trigger re-runs the rollover as an empty cycle; only the
		// summary for the lost tasks is unrecoverable.
		c.unlock(ctx, userID)
		return nil, err
	}

	c.notify(ctx, st, summary)

	c.logger.Info().
		Str("userId", userID).
		Int("tasks", summary.Total).
		Int("completed", summary.Completed).
		Time("resetAt", resetAt).
		Msg("cycle rolled over")

	return &Outcome{Status: StatusReset, Summary: &summary}, nil
}

// commit persists the rollover, retrying a bounded number of times. The
// target state is identical on every attempt, so retrying is idempotent.
func (c *Coordinator) commit(ctx context.Context, userID string, resetAt time.Time) error {
	var err error
	for attempt := 1; attempt <= c.commitRetries; attempt++ {
		err = c.store.CommitRollover(ctx, userID, resetAt)
		if err == nil {
			return nil
		}
		c.logger.Warn().
			Err(err).
			Str("userId", userID).
			Int("attempt", attempt).
			Msg("rollover commit failed")
	}
	return fmt.Errorf("commit rollover after %d attempts: %w", c.commitRetries, err)
}

func (c *Coordinator) unlock(ctx context.Context, userID string) {
	if err := c.store.Unlock(ctx, userID); err != nil {
		// The stale-lock reclaim will eventually recover this user.
		c.logger.Error().Err(err).Str("userId", userID).Msg("failed to release cycle lock")
	}
}

func (c *Coordinator) notify(ctx context.Context, st *State, summary Summary) {
	if c.notifier == nil || !eligibleForSummary(st, summary) {
		return
	}
	if err := c.notifier.SendCycleSummary(ctx, st.UserID, st.Email, summary); err != nil {
		c.logger.Warn().
			Err(err).
			Str("userId", st.UserID).
			Msg("cycle summary notification failed")
	}
}

// eligibleForSummary gates the notification step: the user opted in, has a
// plausible address, and the finished cycle actually contained tasks.
func eligibleForSummary(st *State, summary Summary) bool {
	if !st.NotificationsEnabled || summary.Total == 0 {
		return false
	}
	addr := strings.TrimSpace(st.Email)
	at := strings.Index(addr, "@")
	return at > 0 && at < len(addr)-1 && !strings.ContainsAny(addr, " \t")
}
