package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/teyra/teyra/internal/config"
)

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// handleHealth reports liveness and database reachability.
// GET /api/v1/health
func (s *Server) handleHealth(c echo.Context) error {
	resp := healthResponse{
		Status:   "ok",
		Version:  config.Version,
		Database: "ok",
	}

	status := http.StatusOK
	if err := s.db.PingContext(c.Request().Context()); err != nil {
		resp.Status = "degraded"
		resp.Database = err.Error()
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, resp)
}
