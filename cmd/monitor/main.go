package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/msmahdinejad/smart-monitoring-system/internal/analysis"
	"github.com/msmahdinejad/smart-monitoring-system/internal/api"
	"github.com/msmahdinejad/smart-monitoring-system/internal/camera"
	"github.com/msmahdinejad/smart-monitoring-system/internal/config"
	"github.com/msmahdinejad/smart-monitoring-system/internal/logging"
	"github.com/msmahdinejad/smart-monitoring-system/internal/messaging"
	"github.com/msmahdinejad/smart-monitoring-system/internal/monitor"
	"github.com/msmahdinejad/smart-monitoring-system/internal/notify"
	"github.com/msmahdinejad/smart-monitoring-system/internal/recorder"
	"github.com/msmahdinejad/smart-monitoring-system/internal/store"
)

func main() {
	// Setup structured logging
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg := config.Load()

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("Invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if err := cfg.EnsureDirs(); err != nil {
		log.Fatal().Err(err).Msg("Failed to create output directories")
	}

	// Optional logdy web log viewer, teed alongside the console writer
	if cfg.LogdyEnabled {
		if w, _, err := logging.StartLogdy(cfg); err == nil {
			log.Logger = log.Output(io.MultiWriter(zerolog.ConsoleWriter{Out: os.Stderr}, w))
		} else {
			log.Warn().Err(err).Msg("Failed to start logdy, continuing without it")
		}
	}

	log.Info().
		Str("version", cfg.Version).
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Str("camera_url", cfg.CameraURL).
		Bool("ai_enabled", cfg.AIEnabled).
		Bool("test_mode", cfg.TestMode).
		Msg("Starting smart monitoring system")

	// Persistence
	st, err := store.New(cfg.DBPath, cfg.MaxRecords)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("Failed to open record store")
	}

	// Camera
	cam := camera.New(cfg)
	if !cam.Probe() {
		log.Warn().Str("url", cfg.CameraURL).Msg("Camera not reachable at startup")
	}

	// Video recorder over the camera's MJPEG stream
	rec := recorder.New(cfg, cam.StreamURL(),
		recorder.NewOpenCVSource(cfg),
		recorder.NewOpenCVEncoder(),
		recorder.NewFFmpegTranscoder(cfg.TranscodeTimeout))

	// AI analysis
	ai := analysis.NewClient(cfg)
	if ai.TestModeActive() {
		log.Warn().Str("pattern", cfg.TestPattern).Msg("AI analysis running in test mode")
	}

	// Telegram notifications (disabled internally when unconfigured)
	tg := notify.NewTelegram(cfg)

	// NATS alert bus, optional
	var msgSvc *messaging.Service
	var alerts monitor.AlertPublisher
	if cfg.NatsURL != "" {
		msgSvc, err = messaging.NewService(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to NATS, alerts disabled")
		} else {
			alerts = msgSvc
		}
	}

	// Session controller
	mon := monitor.New(cfg, cam, rec, ai, st, tg, alerts)

	// Telegram command bot
	botCtx, botCancel := context.WithCancel(context.Background())
	defer botCancel()
	if tg.Enabled() {
		bot := notify.NewBot(cfg, tg, mon, st)
		go bot.Run(botCtx)
	}

	// HTTP API
	server := api.NewServer(cfg, mon, st, cam, ai, rec, tg)
	server.Setup()

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	mon.Stop()
	if !mon.WaitForInactive(cfg.ShutdownTimeout) {
		log.Warn().Msg("Monitoring session did not stop in time")
	}
	botCancel()

	if err := server.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if msgSvc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.NatsDrainTimeout)
		if err := msgSvc.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("NATS shutdown error")
		}
		cancel()
	}

	if err := st.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close record store")
	}

	log.Info().Msg("Shutdown complete")
}
