package cycle

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apimw "github.com/teyra/teyra/internal/api/middleware"
)

// Handlers provides HTTP handlers for cycle operations.
type Handlers struct {
	coord *Coordinator
}

// NewHandlers creates a new cycle handlers instance.
func NewHandlers(coord *Coordinator) *Handlers {
	return &Handlers{coord: coord}
}

// RegisterRoutes registers user-facing cycle routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/cycle", h.GetStatus)
}

// RegisterAdminRoutes registers the admin force-reset route.
func (h *Handlers) RegisterAdminRoutes(g *echo.Group) {
	g.POST("/users/:id/reset", h.ForceReset)
}

type statusResponse struct {
	State            *State `json:"state"`
	RemainingSeconds int64  `json:"remainingSeconds"`
}

type outcomeResponse struct {
	Status  Status   `json:"status"`
	Summary *Summary `json:"summary,omitempty"`
}

// GetStatus returns the caller's cycle state and the time remaining in the
// current cycle. Read-only.
// GET /api/v1/cycle
func (h *Handlers) GetStatus(c echo.Context) error {
	userID := apimw.UserID(c)

	state, remaining, err := h.coord.Status(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "no cycle state for user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, statusResponse{
		State:            state,
		RemainingSeconds: int64(remaining.Seconds()),
	})
}

// ForceReset performs an immediate rollover for a user, skipping the time
// gate. Support/testing use only.
// POST /api/v1/admin/users/:id/reset
func (h *Handlers) ForceReset(c echo.Context) error {
	userID := c.Param("id")
	if userID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "user id is required")
	}

	outcome, err := h.coord.ForceReset(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "no cycle state for user")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, outcomeResponse{
		Status:  outcome.Status,
		Summary: outcome.Summary,
	})
}
