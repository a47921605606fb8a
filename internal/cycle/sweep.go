package cycle

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Sweeper runs the scheduled all-users pass, catching users who have not
// triggered their own reset via a dashboard load.
type Sweeper struct {
	store  Store
	coord  *Coordinator
	logger zerolog.Logger
}

// NewSweeper creates a sweeper over all known users.
func NewSweeper(store Store, coord *Coordinator, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		store:  store,
		coord:  coord,
		logger: logger.With().Str("component", "cycle-sweep").Logger(),
	}
}

// Run checks every known user once. Individual failures are logged and do
// not abort the sweep; the failed users are picked up on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	userIDs, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var resets, failures int
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return err
		}

		outcome, err := s.coord.CheckAndReset(ctx, userID)
		if err != nil {
			failures++
			s.logger.Error().Err(err).Str("userId", userID).Msg("sweep reset failed")
			continue
		}
		if outcome.Status == StatusReset {
			resets++
		}
	}

	s.logger.Info().
		Int("users", len(userIDs)).
		Int("resets", resets).
		Int("failures", failures).
		Msg("cycle sweep finished")

	if failures > 0 {
		return fmt.Errorf("cycle sweep: %d of %d users failed", failures, len(userIDs))
	}
	return nil
}
