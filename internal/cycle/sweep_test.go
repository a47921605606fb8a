package cycle

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/teyra/teyra/internal/testutil"
)

func TestSweeper_Run(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	store, queries := newTestStore(t, tdb)
	coord := NewCoordinator(store, Options{}, tdb.Logger)
	sweeper := NewSweeper(store, coord, tdb.Logger)
	ctx := context.Background()

	seedUser(t, queries, "due-1", 25*time.Hour)
	seedUser(t, queries, "due-2", 30*time.Hour)
	seedUser(t, queries, "fresh", time.Hour)
	addTask(t, queries, "due-1", "t1", "one", true)

	if err := sweeper.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, userID := range []string{"due-1", "due-2"} {
		st, err := store.GetState(ctx, userID)
		if err != nil {
			t.Fatalf("GetState(%q) error = %v", userID, err)
		}
		if time.Since(st.LastResetAt) > time.Minute {
			t.Errorf("user %q was not reset by the sweep", userID)
		}
	}

	st, err := store.GetState(ctx, "fresh")
	if err != nil {
		t.Fatalf("GetState(fresh) error = %v", err)
	}
	if time.Since(st.LastResetAt) < 30*time.Minute {
		t.Error("fresh user was reset early by the sweep")
	}

	tasks, _ := store.ListTasks(ctx, "due-1")
	if len(tasks) != 0 {
		t.Errorf("due-1 tasks = %d, want 0", len(tasks))
	}
}

// brokenUserStore fails GetState for one user so the sweep has a partial
// failure to tolerate.
type brokenUserStore struct {
	Store
	brokenUserID string
}

func (b *brokenUserStore) GetState(ctx context.Context, userID string) (*State, error) {
	if userID == b.brokenUserID {
		return nil, context.DeadlineExceeded
	}
	return b.Store.GetState(ctx, userID)
}

func TestSweeper_ContinuesPastFailures(t *testing.T) {
	tdb := testutil.NewTestDB(t)
	defer tdb.Close()

	sqlStore, queries := newTestStore(t, tdb)
	broken := &brokenUserStore{Store: sqlStore, brokenUserID: "bad"}
	coord := NewCoordinator(broken, Options{}, tdb.Logger)
	sweeper := NewSweeper(broken, coord, tdb.Logger)
	ctx := context.Background()

	seedUser(t, queries, "bad", 25*time.Hour)
	seedUser(t, queries, "good", 25*time.Hour)

	err := sweeper.Run(ctx)
	if err == nil {
		t.Fatal("Run() error = nil, want failure report")
	}
	if !strings.Contains(err.Error(), "1 of 2") {
		t.Errorf("Run() error = %v, want '1 of 2 users failed'", err)
	}

	// The healthy user was still swept.
	st, getErr := sqlStore.GetState(ctx, "good")
	if getErr != nil {
		t.Fatalf("GetState(good) error = %v", getErr)
	}
	if time.Since(st.LastResetAt) > time.Minute {
		t.Error("healthy user was not reset despite another user failing")
	}
}
