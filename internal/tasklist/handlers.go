package tasklist

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apimw "github.com/teyra/teyra/internal/api/middleware"
)

// Handlers provides HTTP handlers for task operations.
type Handlers struct {
	service *Service
}

// NewHandlers creates a new task handlers instance.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers task routes on an Echo group.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/tasks", h.List)
	g.POST("/tasks", h.Create)
	g.POST("/tasks/:id/complete", h.Complete)
	g.DELETE("/tasks/:id", h.Delete)
}

type createRequest struct {
	Title string `json:"title"`
}

// Create adds a task to the caller's current cycle.
// POST /api/v1/tasks
func (h *Handlers) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	task, err := h.service.Create(c.Request().Context(), apimw.UserID(c), req.Title)
	if err != nil {
		if errors.Is(err, ErrInvalidTitle) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, task)
}

// List returns the caller's tasks.
// GET /api/v1/tasks
func (h *Handlers) List(c echo.Context) error {
	tasks, err := h.service.List(c.Request().Context(), apimw.UserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, tasks)
}

// Complete marks a task as done.
// POST /api/v1/tasks/:id/complete
func (h *Handlers) Complete(c echo.Context) error {
	task, err := h.service.Complete(c.Request().Context(), apimw.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, task)
}

// Delete removes a task.
// DELETE /api/v1/tasks/:id
func (h *Handlers) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), apimw.UserID(c), c.Param("id")); err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
