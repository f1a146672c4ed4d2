package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/teamcollar/stem-assessment/internal/assessment"
	"github.com/teamcollar/stem-assessment/internal/config"
	"github.com/teamcollar/stem-assessment/internal/database"
	"github.com/teamcollar/stem-assessment/internal/handler"
	"github.com/teamcollar/stem-assessment/internal/logger"
	"github.com/teamcollar/stem-assessment/internal/monitor"
	"github.com/teamcollar/stem-assessment/internal/navigation"
	"github.com/teamcollar/stem-assessment/internal/notify"
	"github.com/teamcollar/stem-assessment/internal/router"
	"github.com/teamcollar/stem-assessment/internal/sensor"
	"github.com/teamcollar/stem-assessment/internal/storage"
	"github.com/teamcollar/stem-assessment/internal/supervisor"
	"github.com/teamcollar/stem-assessment/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting STEM Assessment Runner")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Open Local Store ──────────────────────────────────────────────
	db, err := database.Open(ctx, cfg.DatabasePath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open local store")
	}
	defer db.Close()

	snapshots := storage.New(db, cfg.StorageNamespace)

	// ─── Build the Assessment Runtime ──────────────────────────────────
	store := assessment.New(assessment.Options{
		TotalTestTime: cfg.TotalTestTime,
		SectionTime:   cfg.SectionTime,
		Snapshots:     snapshots,
		Log:           log,
	})
	store.Restore(ctx)

	nav := navigation.NewController(store)

	hub := handler.NewHub(log)
	notifier := notify.Multi{hub, notify.NewLog(log)}

	remote := sensor.NewRemote(3*cfg.FacePollInterval, hub.ReleaseCamera)

	mon := monitor.New(monitor.Config{
		PollInterval:       cfg.FacePollInterval,
		MaxNoFaceTime:      cfg.MaxNoFaceTime,
		GracePeriod:        cfg.GracePeriod,
		MaxViolations:      cfg.MaxViolations,
		GateDetectAttempts: cfg.GateDetectAttempts,
		ReenterDelay:       cfg.ReenterDelay,
	}, store, remote, hub, notifier, log)
	defer mon.Close()

	timing := supervisor.New(store, notifier, cfg.TickInterval, log)

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	go timing.Run(workerCtx)
	go mon.Run(workerCtx)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Assessment: handler.NewAssessmentHandler(store, nav, mon),
		ProctorWS:  handler.NewProctorWSHandler(hub, mon, remote, log, cfg.AllowedOrigins),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the polling loops; no ticks fire after cancellation.
	workerCancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
