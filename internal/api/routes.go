package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/teyra/teyra/internal/api/handlers"
	apimw "github.com/teyra/teyra/internal/api/middleware"
	"github.com/teyra/teyra/internal/cycle"
	"github.com/teyra/teyra/internal/tasklist"
	"github.com/teyra/teyra/internal/usage"
	"github.com/teyra/teyra/internal/users"
)

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID
	s.echo.Use(middleware.RequestID())

	// Security headers
	s.echo.Use(apimw.SecurityHeaders())

	// Request body size limit
	s.echo.Use(middleware.BodyLimit("1M"))

	// Request logging
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	// Gzip compression
	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
}

func (s *Server) setupRoutes() {
	// Unauthenticated liveness probe
	s.echo.GET("/api/v1/health", s.handleHealth)

	v1 := s.echo.Group("/api/v1", apimw.RequireIdentity())

	// Dashboard: the opportunistic "check on read" reset trigger
	v1.GET("/dashboard", s.handleDashboard)

	cycleHandlers := cycle.NewHandlers(s.coordinator)
	cycleHandlers.RegisterRoutes(v1)

	tasklist.NewHandlers(s.taskService).RegisterRoutes(v1)
	usage.NewHandlers(s.usageService).RegisterRoutes(v1)
	users.NewHandlers(s.userService).RegisterRoutes(v1)

	admin := v1.Group("/admin", apimw.RequireAdmin())
	cycleHandlers.RegisterAdminRoutes(admin)
	if s.sched != nil {
		handlers.NewSchedulerHandler(s.sched).RegisterRoutes(admin)
	}
}
