package users

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apimw "github.com/teyra/teyra/internal/api/middleware"
)

// Handlers provides HTTP handlers for user settings.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new users handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers user settings routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/settings", h.Get)
	g.PUT("/settings/notifications", h.UpdateNotifications)
}

type notificationsRequest struct {
	Enabled bool   `json:"enabled"`
	Email   string `json:"email"`
}

// Get returns the caller's profile and settings.
// GET /api/v1/settings
func (h *Handlers) Get(c echo.Context) error {
	profile, err := h.service.Get(c.Request().Context(), apimw.UserID(c))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateNotifications sets the caller's summary email preferences.
// PUT /api/v1/settings/notifications
func (h *Handlers) UpdateNotifications(c echo.Context) error {
	var req notificationsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	profile, err := h.service.UpdateNotifications(c.Request().Context(), apimw.UserID(c), req.Enabled, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profile)
}
