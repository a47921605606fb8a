package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apimw "github.com/teyra/teyra/internal/api/middleware"
	"github.com/teyra/teyra/internal/cycle"
)

// headerEmail optionally carries the caller's email address from the auth
// proxy, used only at first-seen provisioning.
const headerEmail = "X-Teyra-Email"

type dashboardResponse struct {
	State            *cycle.State   `json:"state"`
	Tasks            []cycle.Task   `json:"tasks"`
	RemainingSeconds int64          `json:"remainingSeconds"`
	Reset            *cycle.Summary `json:"reset,omitempty"`
	ResetPending     bool           `json:"resetPending,omitempty"`
}

// handleDashboard is the read-path cycle trigger: it provisions state on
// first sight, opportunistically rolls the cycle over when due, and
// returns the current state and task list. A failed rollover degrades to
// resetPending instead of failing the whole page.
// GET /api/v1/dashboard
func (s *Server) handleDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	userID := apimw.UserID(c)

	if _, err := s.userService.Ensure(ctx, userID, c.Request().Header.Get(headerEmail)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := dashboardResponse{}

	outcome, err := s.coordinator.CheckAndReset(ctx, userID)
	if err != nil {
		// Reset pending; the sweep or the next load will retry.
		s.logger.Warn().Err(err).Str("userId", userID).Msg("dashboard cycle check failed")
		resp.ResetPending = true
	} else if outcome.Status == cycle.StatusReset {
		resp.Reset = outcome.Summary
	}

	state, remaining, err := s.coordinator.Status(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp.State = state
	resp.RemainingSeconds = int64(remaining.Seconds())

	tasks, err := s.taskService.List(ctx, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp.Tasks = tasks

	return c.JSON(http.StatusOK, resp)
}
