// Package main is the entry point for the preventsim service: a
// simulation-and-calibration engine for a portfolio of disease-prevention
// programs. It loads a validated parameter set, exposes deterministic and
// Monte Carlo evaluations plus calibration over HTTP, and persists run
// summaries for reporting layers.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/healthecon/preventsim/internal/config"
	"github.com/healthecon/preventsim/internal/database"
	"github.com/healthecon/preventsim/internal/engine"
	"github.com/healthecon/preventsim/internal/modules/runs"
	"github.com/healthecon/preventsim/internal/scheduler"
	"github.com/healthecon/preventsim/internal/server"
	"github.com/healthecon/preventsim/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting preventsim")

	// Model parameters: built-in defaults unless a parameters file is
	// configured. Parameters are an explicit value handed to the engine,
	// nothing global and nothing mutable behind the model's back.
	params := engine.DefaultParameters()
	if cfg.ParametersFile != "" {
		loaded, err := readParametersFile(cfg.ParametersFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.ParametersFile).Msg("Failed to read parameters file")
		}
		params = loaded
		log.Info().Str("file", cfg.ParametersFile).Msg("Loaded parameters from file")
	}

	model, err := engine.Load(params, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load model")
	}

	db, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "runs.db"),
		Name: "runs",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open runs database")
	}
	defer db.Close()

	runsRepo, err := runs.NewRepository(db.Conn(), log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize runs repository")
	}

	handlers := server.NewHandlers(server.HandlersConfig{
		Model:        model,
		Repo:         runsRepo,
		Log:          log,
		MCIterations: cfg.MCIterations,
		MCSeed:       cfg.MCSeed,
		MCWorkers:    cfg.MCWorkers,
		HistoryKeep:  cfg.RunHistoryKeep,
	})

	srv := server.New(server.Config{
		Log:      log,
		Port:     cfg.Port,
		DevMode:  cfg.DevMode,
		Handlers: handlers,
	})

	sched := scheduler.New(log)
	if cfg.SnapshotSchedule != "" {
		job := scheduler.NewSnapshotJob(handlers, runsRepo, cfg.RunHistoryKeep, log)
		if err := sched.AddJob(cfg.SnapshotSchedule, job); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.SnapshotSchedule).Msg("Failed to register snapshot job")
		}
		sched.Start()
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("Server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}

	log.Info().Msg("Stopped")
}

// readParametersFile loads a full Parameters document from a JSON file.
func readParametersFile(path string) (engine.Parameters, error) {
	var params engine.Parameters
	data, err := os.ReadFile(path)
	if err != nil {
		return params, err
	}
	if err := json.Unmarshal(data, &params); err != nil {
		return params, err
	}
	return params, nil
}
