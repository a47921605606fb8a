package api

import (
	"context"
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/teyra/teyra/internal/config"
	"github.com/teyra/teyra/internal/cycle"
	"github.com/teyra/teyra/internal/database/sqlc"
	"github.com/teyra/teyra/internal/notification"
	"github.com/teyra/teyra/internal/notification/email"
	"github.com/teyra/teyra/internal/scheduler"
	"github.com/teyra/teyra/internal/tasklist"
	"github.com/teyra/teyra/internal/usage"
	"github.com/teyra/teyra/internal/users"
)

// Server handles HTTP requests for the Teyra API.
type Server struct {
	echo   *echo.Echo
	db     *sql.DB
	logger zerolog.Logger
	cfg    *config.Config
	sched  *scheduler.Scheduler

	// Services
	cycleStore      *cycle.SQLStore
	coordinator     *cycle.Coordinator
	sweeper         *cycle.Sweeper
	userService     *users.Service
	taskService     *tasklist.Service
	usageService    *usage.Service
	notifierService *notification.Service
}

// NewServer creates a new API server instance. sched may be nil (tests);
// the admin scheduler routes are only registered when it is present.
func NewServer(db *sql.DB, cfg *config.Config, sched *scheduler.Scheduler, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		db:     db,
		logger: logger,
		cfg:    cfg,
		sched:  sched,
	}

	queries := sqlc.New(db)

	// Initialize services
	s.cycleStore = cycle.NewSQLStore(queries)
	s.coordinator = cycle.NewCoordinator(s.cycleStore, cycle.Options{
		Length:        cfg.Cycle.Length,
		LockTTL:       cfg.Cycle.LockTTL,
		CommitRetries: cfg.Cycle.CommitRetries,
	}, logger)
	s.sweeper = cycle.NewSweeper(s.cycleStore, s.coordinator, logger)

	s.userService = users.NewService(queries, logger)
	s.taskService = tasklist.NewService(queries, logger)
	s.usageService = usage.NewService(queries, logger)

	// Wire the summary notifier when SMTP is configured
	var sender notification.Sender
	if cfg.Email.Enabled {
		sender = notification.NewEmailSender(email.Settings{
			Server:     cfg.Email.Server,
			Port:       cfg.Email.Port,
			Encryption: email.EncryptionMode(cfg.Email.Encryption),
			Username:   cfg.Email.Username,
			Password:   cfg.Email.Password,
			From:       cfg.Email.From,
		}, logger)
	}
	s.notifierService = notification.NewService(sender, logger)
	s.coordinator.SetNotifier(s.notifierService)

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Coordinator returns the reset coordinator.
func (s *Server) Coordinator() *cycle.Coordinator {
	return s.coordinator
}

// Sweeper returns the all-users cycle sweeper, for scheduler registration.
func (s *Server) Sweeper() *cycle.Sweeper {
	return s.sweeper
}

// Start begins listening on the configured address.
func (s *Server) Start() error {
	return s.echo.Start(s.cfg.Server.Address())
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying echo instance for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
