package cycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/teyra/teyra/internal/database/sqlc"
	"github.com/teyra/teyra/internal/testutil"
)

func newTestStore(t *testing.T, tdb *testutil.TestDB) (*SQLStore, *sqlc.Queries) {
	t.Helper()
	queries := sqlc.New(tdb.Conn)
	return NewSQLStore(queries), queries
}

// seedUser provisions cycle state with last_reset_at the given duration in
// the past.
func seedUser(t *testing.T, queries *sqlc.Queries, userID string, lastResetAgo time.Duration) {
	t.Helper()
	_, err := queries.CreateCycleState(context.Background(), sqlc.CreateCycleStateParams{
		UserID:      userID,
		Email:       userID + "@example.com",
		LastResetAt: time.Now().UTC().Add(-lastResetAgo),
	})
	if err != nil {
		t.Fatalf("seed user %q: %v", userID, err)
	}
}

func addTask(t *testing.T, queries *sqlc.Queries, userID, id, title string, completed bool) {
	t.Helper()
	ctx := context.Background()
	_, err := queries.CreateTask(ctx, sqlc.CreateTaskParams{ID: id, UserID: userID, Title: title})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if completed {
		if _, err := queries.CompleteTask(ctx, sqlc.CompleteTaskParams{ID: id, UserID: userID}); err != nil {
			t.Fatalf("complete task: %v", err)
		}
	}
}

func setLifetimeCompleted(t *testing.T, tdb *testutil.TestDB, userID string, n int64) {
	t.Helper()
	if _, err := tdb.Conn.Exec("UPDATE user_cycle_state SET lifetime_completed = ? WHERE user_id = ?", n, userID); err != nil {
		t.Fatalf("set lifetime_completed: %v", err)
	}
}

func setLocked(t *testing.T, tdb *testutil.TestDB, userID string, locked bool) {
	t.Helper()
	if _, err := tdb.Conn.Exec("UPDATE user_cycle_state SET is_locked = ? WHERE user_id = ?", locked, userID); err != nil {
		t.Fatalf("set is_locked: %v", err)
	}
}

func TestCheckAndReset_NotDue(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	store, queries := newTestStore(t, tdb)
	coord := NewCoordinator(store, Options{}, tdb.Logger)
	ctx := context.Background()

	seedUser(t, queries, "u1", 23*time.Hour+59*time.Minute)
	addTask(t, queries, "u1", "t1", "write tests", false)

	outcome, err := coord.CheckAndReset(ctx, "u1")
	if err != nil {
		t.Fatalf("CheckAndReset() error = %v", err)
	}
	if outcome.Status != StatusNotDue {
		t.Fatalf("Status = %q, want %q", outcome.Status, StatusNotDue)
	}
	if outcome.Remaining <= 0 || outcome.Remaining > time.Minute+time.Second {
		t.Errorf("Remaining = %v, want a small positive duration", outcome.Remaining)
	}

	// No side effects
	tasks, err := store.ListTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("tasks = %d, want 1 (no deletion on NotDue)", len(tasks))
	}
}

func TestCheckAndReset_DueJustPastBoundary(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	store, queries := newTestStore(t, tdb)
	coord := NewCoordinator(store, Options{}, tdb.Logger)

	seedUser(t, queries, "u1", 24*time.Hour+time.Second)

	outcome, err := coord.CheckAndReset(context.Background(), "u1")
	if err != nil {
		t.Fatalf("CheckAndReset() error = %v", err)
	}
	if outcome.Status != StatusReset {
		t.Fatalf("Status = %q, want %q", outcome.Status, StatusReset)
	}
}

func TestCheckAndReset_FullRollover(t *testing.T) {
	// lastResetAt 25h ago, 5 tasks (3 completed, 2 pending), lifetime 20.
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	store, queries := newTestStore(t, tdb)
	coord := NewCoordinator(store, Options{}, tdb.Logger)
	ctx := context.Background()

	seedUser(t, queries, "u1", 25*time.Hour)
	addTask(t, queries, "u1", "t1", "one", true)
	addTask(t, queries, "u1", "t2", "two", true)
	addTask(t, queries, "u1", "t3", "three", true)
	addTask(t, queries, "u1", "t4", "four", false)
	addTask(t, queries, "u1", "t5", "five", false)
	setLifetimeCompleted(t, tdb, "u1", 20)

	before := time.Now().UTC()
	outcome, err := coord.CheckAndReset(ctx, "u1")
	if err != nil {
		t.Fatalf("CheckAndReset() error = %v", err)
	}

	if outcome.Status != StatusReset {
		t.Fatalf("Status = %q, want %q", outcome.Status, StatusReset)
	}
	if outcome.Summary == nil {
		t.Fatal("Summary is nil")
	}
	if outcome.Summary.Total != 5 {
		t.Errorf("Summary.Total = %d, want 5", outcome.Summary.Total)
	}
	if outcome.Summary.Completed != 3 {
		t.Errorf("Summary.Completed = %d, want 3", outcome.Summary.Completed)
	}
	if outcome.Summary.Pending != 2 {
		t.Errorf("Summary.Pending = %d, want 2", outcome.Summary.Pending)
	}
	if outcome.Summary.CompletionRate != 60.0 {
		t.Errorf("Summary.CompletionRate = %v, want 60.0", outcome.Summary.CompletionRate)
	}
	if outcome.Summary.LifetimeCompleted != 20 {
		t.Errorf("Summary.LifetimeCompleted = %d, want 20", outcome.Summary.LifetimeCompleted)
	}

	// Task list is empty
	tasks, err := store.ListTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("tasks after reset = %d, want 0", len(tasks))
	}

	// Lifetime preserved, counters zeroed, lastResetAt advanced
	st, err := store.GetState(ctx, "u1")
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if st.LifetimeCompleted != 20 {
		t.Errorf("LifetimeCompleted = %d, want 20 (reset must not touch it)", st.LifetimeCompleted)
	}
	if st.DailyCompleted != 0 || st.DailyMoodChecks != 0 || st.DailyAISplits != 0 || st.DailyParses != 0 {
		t.Errorf("daily counters = %d/%d/%d/%d, want all 0",
			st.DailyCompleted, st.DailyMoodChecks, st.DailyAISplits, st.DailyParses)
	}
	if st.IsLocked {
		t.Error("IsLocked = true after successful reset")
	}
	if st.LastResetAt.Before(before.Add(-time.Second)) || st.LastResetAt.After(time.Now().UTC().Add(time.Second)) {
		t.Errorf("LastResetAt = %v, want approximately now", st.LastResetAt)
	}

	// Immediately calling again is a no-op
	again, err := coord.CheckAndReset(ctx, "u1")
	if err != nil {
		t.Fatalf("second CheckAndReset() error = %v", err)
	}
	if again.Status != StatusNotDue {
		t.Errorf("second Status = %q, want %q (never two resets)", again.Status, StatusNotDue)
	}
}

func TestCheckAndReset_CounterZeroing(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	store, queries := newTestStore(t, tdb)
	coord := NewCoordinator(store, Options{}, tdb.Logger)
	ctx := context.Background()

	seedUser(t, queries, "u1", 25*time.Hour)
	for range 3 {
		if _, err := queries.IncrementMoodChecks(ctx, "u1"); err != nil {
			t.Fatalf("IncrementMoodChecks() error = %v", err)
		}
	}
	if _, err := queries.IncrementAISplits(ctx, "u1"); err != nil {
		t.Fatalf("IncrementAISplits() error = %v", err)
	}
	if _, err := queries.IncrementParses(ctx, "u1"); err != nil {
		t.Fatalf("IncrementParses() error = %v", err)
	}

	outcome, err := coord.CheckAndReset(ctx, "u1")
	if err != nil {
		t.Fatalf("CheckAndReset() error = %v", err)
	}
	if outcome.Status != StatusReset {
		t.Fatalf("Status = %q, want %q", outcome.Status, StatusReset)
	}

	st, err := store.GetState(ctx, "u1")
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if st.DailyMoodChecks != 0 || st.DailyAISplits != 0 || st.DailyParses != 0 {
		t.Errorf("counters = %d/%d/%d, want all 0",
			st.DailyMoodChecks, st.DailyAISplits, st.DailyParses)
	}
}

func TestCheckAndReset_NotFound(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	store, _ := newTestStore(t, tdb)
	coord := NewCoordinator(store, Options{}, tdb.Logger)

	_, err := coord.CheckAndReset(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestCheckAndReset_LockedReturnsInProgress(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	store, queries := newTestStore(t, tdb)
	coord := NewCoordinator(store, Options{}, tdb.Logger)
	ctx := context.Background()

	seedUser(t, queries, "u1", 25*time.Hour)
	addTask(t, queries, "u1", "t1", "keep me", false)
	setLocked(t, tdb, "u1", true)

	outcome, err := coord.CheckAndReset(ctx, "u1")
	if err != nil {
		t.Fatalf("CheckAndReset() error = %v", err)
	}
	if outcome.Status != StatusInProgress {
		t.Fatalf("Status = %q, want %q", outcome.Status, StatusInProgress)
	}

	tasks, _ := store.ListTasks(ctx, "u1")
	if len(tasks) != 1 {
		t.Errorf("tasks = %d, want 1 (no side effects while locked)", len(tasks))
	}
}

func TestCheckAndReset_StaleLockReclaimed(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	store, queries := newTestStore(t, tdb)
	coord := NewCoordinator(store, Options{}, tdb.Logger)

	// Locked, and last_reset_at is past the 48h TTL: the lock holder died.
	seedUser(t, queries, "u1", 50*time.Hour)
	setLocked(t, tdb, "u1", true)

	outcome, err := coord.CheckAndReset(context.Background(), "u1")
	if err != nil {
		t.Fatalf("CheckAndReset() error = %v", err)
	}
	if outcome.Status != StatusReset {
		t.Fatalf("Status = %q, want %q (stale lock must be reclaimed)", outcome.Status, StatusReset)
	}

	st, _ := store.GetState(context.Background(), "u1")
	if st.IsLocked {
		t.Error("IsLocked = true after reclaim and reset")
	}
}

func TestForceReset_SkipsTimeGate(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	store, queries := newTestStore(t, tdb)
	coord := NewCoordinator(store, Options{}, tdb.Logger)
	ctx := context.Background()

	seedUser(t, queries, "u1", time.Hour)
	addTask(t, queries, "u1", "t1", "one", true)

	outcome, err := coord.ForceReset(ctx, "u1")
	if err != nil {
		t.Fatalf("ForceReset() error = %v", err)
	}
	if outcome.Status != StatusReset {
		t.Fatalf("Status = %q, want %q", outcome.Status, StatusReset)
	}
	if outcome.Summary.Total != 1 || outcome.Summary.Completed != 1 {
		t.Errorf("Summary = %+v, want total 1 completed 1", outcome.Summary)
	}
}

func TestForceReset_RespectsLock(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	store, queries := newTestStore(t, tdb)
	coord := NewCoordinator(store, Options{}, tdb.Logger)

	seedUser(t, queries, "u1", time.Hour)
	setLocked(t, tdb, "u1", true)

	outcome, err := coord.ForceReset(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ForceReset() error = %v", err)
	}
	if outcome.Status != StatusInProgress {
		t.Fatalf("Status = %q, want %q", outcome.Status, StatusInProgress)
	}
}

func TestCheckAndReset_Concurrent(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	store, queries := newTestStore(t, tdb)
	coord := NewCoordinator(store, Options{}, tdb.Logger)
	ctx := context.Background()

	seedUser(t, queries, "u1", 25*time.Hour)
	addTask(t, queries, "u1", "t1", "one", false)

	var wg sync.WaitGroup
	outcomes := make([]*Outcome, 2)
	errs := make([]error, 2)

	for i := range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i], errs[i] = coord.CheckAndReset(ctx, "u1")
		}()
	}
	wg.Wait()

	var resets int
	for i := range 2 {
		if errs[i] != nil {
			t.Fatalf("CheckAndReset() #%d error = %v", i, errs[i])
		}
		switch outcomes[i].Status {
		case StatusReset:
			resets++
		case StatusInProgress, StatusNotDue:
			// The loser either saw the lock or a fresh cycle.
		default:
			t.Errorf("unexpected status %q", outcomes[i].Status)
		}
	}
	if resets != 1 {
		t.Fatalf("resets = %d, want exactly 1", resets)
	}
}

// flakyStore wraps a Store and fails CommitRollover a set number of times.
type flakyStore struct {
	Store
	mu           sync.Mutex
	commitFails  int
	commitCalls  int
	unlockCalled bool
}

func (f *flakyStore) CommitRollover(ctx context.Context, userID string, resetAt time.Time) error {
	f.mu.Lock()
	f.commitCalls++
	fail := f.commitFails > 0
	if fail {
		f.commitFails--
	}
	f.mu.Unlock()
	if fail {
		return errors.New("synthetic write failure")
	}
	return f.Store.CommitRollover(ctx, userID, resetAt)
}

func (f *flakyStore) Unlock(ctx context.Context, userID string) error {
	f.mu.Lock()
	f.unlockCalled = true
	f.mu.Unlock()
	return f.Store.Unlock(ctx, userID)
}

func TestCheckAndReset_CommitRetriesOnce(t *testing.T) {
	// Store write fails once then succeeds: eventual reset, lock cleared,
	// lastResetAt advanced exactly once.
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	sqlStore, queries := newTestStore(t, tdb)
	flaky := &flakyStore{Store: sqlStore, commitFails: 1}
	coord := NewCoordinator(flaky, Options{}, tdb.Logger)
	ctx := context.Background()

	seedUser(t, queries, "u1", 25*time.Hour)
	addTask(t, queries, "u1", "t1", "one", true)

	outcome, err := coord.CheckAndReset(ctx, "u1")
	if err != nil {
		t.Fatalf("CheckAndReset() error = %v", err)
	}
	if outcome.Status != StatusReset {
		t.Fatalf("Status = %q, want %q", outcome.Status, StatusReset)
	}
	if flaky.commitCalls != 2 {
		t.Errorf("commit calls = %d, want 2", flaky.commitCalls)
	}

	st, _ := sqlStore.GetState(ctx, "u1")
	if st.IsLocked {
		t.Error("IsLocked = true, want false")
	}
	if time.Since(st.LastResetAt) > time.Minute {
		t.Errorf("LastResetAt = %v, want approximately now", st.LastResetAt)
	}
}

func TestCheckAndReset_CommitFailurePermanent(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	sqlStore, queries := newTestStore(t, tdb)
	flaky := &flakyStore{Store: sqlStore, commitFails: 100}
	coord := NewCoordinator(flaky, Options{CommitRetries: 2}, tdb.Logger)
	ctx := context.Background()

	seedUser(t, queries, "u1", 25*time.Hour)
	addTask(t, queries, "u1", "t1", "one", false)

	before, err := sqlStore.GetState(ctx, "u1")
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}

	_, err = coord.CheckAndReset(ctx, "u1")
	if err == nil {
		t.Fatal("CheckAndReset() error = nil, want commit failure")
	}

	st, _ := sqlStore.GetState(ctx, "u1")
	if st.IsLocked {
		t.Error("IsLocked = true, want false (user must not stay locked)")
	}
	if !st.LastResetAt.Equal(before.LastResetAt) {
		t.Errorf("LastResetAt advanced on failed commit: %v -> %v", before.LastResetAt, st.LastResetAt)
	}
	if !flaky.unlockCalled {
		t.Error("lock was not released after persistent commit failure")
	}

	// Documented lossy edge: tasks are already gone; the next trigger
	// re-runs an empty rollover.
	tasks, _ := sqlStore.ListTasks(ctx, "u1")
	if len(tasks) != 0 {
		t.Errorf("tasks = %d, want 0", len(tasks))
	}

	good := NewCoordinator(sqlStore, Options{}, tdb.Logger)
	outcome, err := good.CheckAndReset(ctx, "u1")
	if err != nil {
		t.Fatalf("retry CheckAndReset() error = %v", err)
	}
	if outcome.Status != StatusReset {
		t.Fatalf("retry Status = %q, want %q", outcome.Status, StatusReset)
	}
	if outcome.Summary.Total != 0 {
		t.Errorf("retry Summary.Total = %d, want 0 (empty rollover)", outcome.Summary.Total)
	}
}

// fakeNotifier records summary deliveries.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []summaryCall
	err   error
}

type summaryCall struct {
	userID  string
	email   string
	summary Summary
}

func (f *fakeNotifier) SendCycleSummary(ctx context.Context, userID, email string, summary Summary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, summaryCall{userID: userID, email: email, summary: summary})
	return f.err
}

func enableNotifications(t *testing.T, tdb *testutil.TestDB, userID string) {
	t.Helper()
	if _, err := tdb.Conn.Exec("UPDATE user_cycle_state SET notifications_enabled = 1 WHERE user_id = ?", userID); err != nil {
		t.Fatalf("enable notifications: %v", err)
	}
}

func TestCheckAndReset_SendsSummary(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	store, queries := newTestStore(t, tdb)
	coord := NewCoordinator(store, Options{}, tdb.Logger)
	notifier := &fakeNotifier{}
	coord.SetNotifier(notifier)
	ctx := context.Background()

	seedUser(t, queries, "u1", 25*time.Hour)
	enableNotifications(t, tdb, "u1")
	addTask(t, queries, "u1", "t1", "one", true)
	addTask(t, queries, "u1", "t2", "two", false)

	outcome, err := coord.CheckAndReset(ctx, "u1")
	if err != nil {
		t.Fatalf("CheckAndReset() error = %v", err)
	}
	if outcome.Status != StatusReset {
		t.Fatalf("Status = %q, want %q", outcome.Status, StatusReset)
	}

	if len(notifier.calls) != 1 {
		t.Fatalf("notifier calls = %d, want 1", len(notifier.calls))
	}
	call := notifier.calls[0]
	if call.userID != "u1" || call.email != "u1@example.com" {
		t.Errorf("call = %q/%q, want u1/u1@example.com", call.userID, call.email)
	}
	if call.summary.Total != 2 || call.summary.Completed != 1 {
		t.Errorf("summary = %+v, want total 2 completed 1", call.summary)
	}
}

func TestCheckAndReset_NoSummaryForEmptyCycle(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	store, queries := newTestStore(t, tdb)
	coord := NewCoordinator(store, Options{}, tdb.Logger)
	notifier := &fakeNotifier{}
	coord.SetNotifier(notifier)

	seedUser(t, queries, "u1", 25*time.Hour)
	enableNotifications(t, tdb, "u1")

	outcome, err := coord.CheckAndReset(context.Background(), "u1")
	if err != nil {
		t.Fatalf("CheckAndReset() error = %v", err)
	}
	if outcome.Status != StatusReset {
		t.Fatalf("Status = %q, want %q", outcome.Status, StatusReset)
	}
	if len(notifier.calls) != 0 {
		t.Errorf("notifier calls = %d, want 0 for an empty cycle", len(notifier.calls))
	}
}

func TestCheckAndReset_NoSummaryWhenDisabled(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	store, queries := newTestStore(t, tdb)
	coord := NewCoordinator(store, Options{}, tdb.Logger)
	notifier := &fakeNotifier{}
	coord.SetNotifier(notifier)

	// notifications_enabled defaults to false
	seedUser(t, queries, "u1", 25*time.Hour)
	addTask(t, queries, "u1", "t1", "one", true)

	if _, err := coord.CheckAndReset(context.Background(), "u1"); err != nil {
		t.Fatalf("CheckAndReset() error = %v", err)
	}
	if len(notifier.calls) != 0 {
		t.Errorf("notifier calls = %d, want 0 when notifications are disabled", len(notifier.calls))
	}
}

func TestCheckAndReset_NotifierFailureDoesNotFailReset(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	store, queries := newTestStore(t, tdb)
	coord := NewCoordinator(store, Options{}, tdb.Logger)
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	coord.SetNotifier(notifier)

	seedUser(t, queries, "u1", 25*time.Hour)
	enableNotifications(t, tdb, "u1")
	addTask(t, queries, "u1", "t1", "one", true)

	outcome, err := coord.CheckAndReset(context.Background(), "u1")
	if err != nil {
		t.Fatalf("CheckAndReset() error = %v (notifier failures must be swallowed)", err)
	}
	if outcome.Status != StatusReset {
		t.Fatalf("Status = %q, want %q", outcome.Status, StatusReset)
	}
}

func TestEligibleForSummary(t *testing.T) {
	summary := Summary{Total: 3, Completed: 1, Pending: 2}

	tests := []struct {
		name    string
		state   State
		summary Summary
		want    bool
	}{
		{"enabled with valid email", State{NotificationsEnabled: true, Email: "a@b.co"}, summary, true},
		{"disabled", State{NotificationsEnabled: false, Email: "a@b.co"}, summary, false},
		{"empty email", State{NotificationsEnabled: true, Email: ""}, summary, false},
		{"missing domain", State{NotificationsEnabled: true, Email: "a@"}, summary, false},
		{"missing local part", State{NotificationsEnabled: true, Email: "@b.co"}, summary, false},
		{"whitespace in address", State{NotificationsEnabled: true, Email: "a b@c.co"}, summary, false},
		{"empty cycle", State{NotificationsEnabled: true, Email: "a@b.co"}, Summary{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eligibleForSummary(&tt.state, tt.summary); got != tt.want {
				t.Errorf("eligibleForSummary() = %v, want %v", got, tt.want)
			}
		})
	}
}
