package usage

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/teyra/teyra/internal/database/sqlc"
)

// Counter names a daily usage counter. Counters are bumped by feature
// endpoints during the day and zeroed by the cycle rollover.
type Counter string

const (
	CounterMoodCheck Counter = "mood_check"
	CounterAISplit   Counter = "ai_split"
	CounterParse     Counter = "parse"
)

var (
	// ErrUnknownCounter is returned for counter names outside the fixed set.
	ErrUnknownCounter = errors.New("unknown usage counter")
	// ErrUserNotFound is returned when the user has no cycle state row.
	ErrUserNotFound = errors.New("user not found")
)

// Service records daily usage counters. Each increment is a single atomic
// UPDATE so feature-code bumps can never race destructively with the
// rollover's zeroing.
type Service struct {
	queries *sqlc.Queries
	logger  zerolog.Logger
}

// NewService creates a new usage service.
func NewService(queries *sqlc.Queries, logger zerolog.Logger) *Service {
	return &Service{
		queries: queries,
		logger:  logger.With().Str("component", "usage").Logger(),
	}
}

// Increment bumps one of the user's daily counters.
func (s *Service) Increment(ctx context.Context, userID string, counter Counter) error {
	var (
		rows int64
		err  error
	)

	switch counter {
	case CounterMoodCheck:
		rows, err = s.queries.IncrementMoodChecks(ctx, userID)
	case CounterAISplit:
		rows, err = s.queries.IncrementAISplits(ctx, userID)
	case CounterParse:
		rows, err = s.queries.IncrementParses(ctx, userID)
	default:
		return ErrUnknownCounter
	}

	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Valid reports whether the name maps to a known counter.
func Valid(name string) bool {
	switch Counter(name) {
	case CounterMoodCheck, CounterAISplit, CounterParse:
		return true
	}
	return false
}
