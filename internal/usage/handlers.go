package usage

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apimw "github.com/teyra/teyra/internal/api/middleware"
)

// Handlers provides HTTP handlers for usage counter pings.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new usage handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers usage routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.POST("/usage/:counter", h.Record)
}

// Record bumps a daily usage counter for the caller.
// POST /api/v1/usage/:counter
func (h *Handlers) Record(c echo.Context) error {
	name := c.Param("counter")
	if !Valid(name) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown usage counter")
	}

	err := h.service.Increment(c.Request().Context(), apimw.UserID(c), Counter(name))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}
