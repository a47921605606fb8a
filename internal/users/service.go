package users

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/teyra/teyra/internal/database/sqlc"
)

// ErrUserNotFound is returned when the user has no cycle state row.
var ErrUserNotFound = errors.New("user not found")

// Profile is the user-facing view of an account's settings.
type Profile struct {
	UserID               string    `json:"userId"`
	Email                string    `json:"email"`
	NotificationsEnabled bool      `json:"notificationsEnabled"`
	MemberSince          time.Time `json:"memberSince"`
}

// Service provisions per-user cycle state and manages notification
// preferences. Identity itself lives with the external provider; this
// service only owns the row keyed by the provider's opaque user ID.
type Service struct {
	queries *sqlc.Queries
	logger  zerolog.Logger
}

// NewService creates a new users service.
func NewService(queries *sqlc.Queries, logger zerolog.Logger) *Service {
	return &Service{
		queries: queries,
		logger:  logger.With().Str("component", "users").Logger(),
	}
}

// Ensure provisions cycle state for a user on first sight. The initial
// last_reset_at is the provisioning time, so a brand-new user's first
// reset is a full cycle away. Calling Ensure for an existing user is a
// no-op and never overwrites their settings.
func (s *Service) Ensure(ctx context.Context, userID, email string) (*Profile, error) {
	row, err := s.queries.GetCycleState(ctx, userID)
	if err == nil {
		return profileFromRow(row), nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	row, err = s.queries.CreateCycleState(ctx, sqlc.CreateCycleStateParams{
		UserID:      userID,
		Email:       email,
		LastResetAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("userId", userID).Msg("provisioned cycle state")
	return profileFromRow(row), nil
}

// Get returns the user's profile.
func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	row, err := s.queries.GetCycleState(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return profileFromRow(row), nil
}

// UpdateNotifications sets the notification preference and address read by
// the summary sender. The reset coordinator never touches these fields.
func (s *Service) UpdateNotifications(ctx context.Context, userID string, enabled bool, email string) (*Profile, error) {
	row, err := s.queries.UpdateNotificationSettings(ctx, sqlc.UpdateNotificationSettingsParams{
		NotificationsEnabled: enabled,
		Email:                email,
		UserID:               userID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return profileFromRow(row), nil
}

func profileFromRow(row *sqlc.UserCycleState) *Profile {
	return &Profile{
		UserID:               row.UserID,
		Email:                row.Email,
		NotificationsEnabled: row.NotificationsEnabled,
		MemberSince:          row.CreatedAt,
	}
}
