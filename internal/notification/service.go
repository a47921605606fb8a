// Package notification composes and dispatches end-of-cycle summary
// emails. The reset coordinator treats delivery as fire-and-forget; a
// failed send is logged here and never bubbles into the reset outcome.
package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/teyra/teyra/internal/cycle"
	"github.com/teyra/teyra/internal/notification/email"
)

// Sender is the delivery transport. Satisfied by email.Notifier.
type Sender interface {
	Send(to, subject, body string) error
}

// Service composes cycle summary messages and hands them to the sender.
type Service struct {
	sender Sender
	logger zerolog.Logger
}

// NewService creates a notification service. A nil sender disables
// delivery entirely.
func NewService(sender Sender, logger zerolog.Logger) *Service {
	return &Service{
		sender: sender,
		logger: logger.With().Str("component", "notification").Logger(),
	}
}

// SendCycleSummary delivers the end-of-cycle recap to the user.
func (s *Service) SendCycleSummary(ctx context.Context, userID, address string, summary cycle.Summary) error {
	if s.sender == nil {
		s.logger.Debug().Str("userId", userID).Msg("no sender configured, skipping cycle summary")
		return nil
	}

	subject := fmt.Sprintf("[Teyra] Your day in review - %d of %d tasks done", summary.Completed, summary.Total)
	body := composeSummaryBody(summary)

	if err := s.sender.Send(address, subject, body); err != nil {
		return fmt.Errorf("send cycle summary: %w", err)
	}

	s.logger.Info().Str("userId", userID).Int("tasks", summary.Total).Msg("cycle summary sent")
	return nil
}

func composeSummaryBody(summary cycle.Summary) string {
	var b strings.Builder
	b.WriteString("Your day has been reset. Here's how it went:\n\n")
	fmt.Fprintf(&b, "Tasks: %d\n", summary.Total)
	fmt.Fprintf(&b, "Completed: %d\n", summary.Completed)
	fmt.Fprintf(&b, "Still pending: %d\n", summary.Pending)
	fmt.Fprintf(&b, "Completion rate: %.1f%%\n\n", summary.CompletionRate)
	fmt.Fprintf(&b, "All-time completed tasks: %d\n\n", summary.LifetimeCompleted)

	switch {
	case summary.Pending == 0:
		b.WriteString("You cleared the whole list. Nice work!\n")
	case summary.Completed == 0:
		b.WriteString("Tomorrow is a fresh start.\n")
	default:
		b.WriteString("Keep it up!\n")
	}

	return b.String()
}

// NewEmailSender builds the SMTP sender from settings, or nil when the
// server is not configured.
func NewEmailSender(settings email.Settings, logger zerolog.Logger) Sender {
	if settings.Server == "" {
		return nil
	}
	return email.New(settings, logger)
}
