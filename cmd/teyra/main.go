package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/teyra/teyra/internal/api"
	"github.com/teyra/teyra/internal/config"
	"github.com/teyra/teyra/internal/database"
	"github.com/teyra/teyra/internal/logger"
	"github.com/teyra/teyra/internal/scheduler"
	"github.com/teyra/teyra/internal/scheduler/tasks"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Local development convenience; ignored when absent
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("db", cfg.Database.Path).
		Dur("cycleLength", cfg.Cycle.Length).
		Msg("starting teyra")

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}

	server := api.NewServer(db.Conn(), cfg, sched, log.Logger)

	if err := tasks.RegisterCycleSweepTask(sched, server.Sweeper(), cfg.Cycle.SweepCron); err != nil {
		log.Fatal().Err(err).Msg("failed to register cycle sweep task")
	}

	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	go func() {
		log.Info().Str("address", cfg.Server.Address()).Msg("http server listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("scheduler shutdown failed")
	}
}
