package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/remote-tui/termhost/api/handlers"
	"github.com/remote-tui/termhost/internal/app"
	"github.com/remote-tui/termhost/internal/config"
	"github.com/remote-tui/termhost/internal/db"
	"github.com/remote-tui/termhost/internal/hostkey"
	"github.com/remote-tui/termhost/internal/logger"
	"github.com/remote-tui/termhost/internal/monitor"
	"github.com/remote-tui/termhost/internal/repository"
	"github.com/remote-tui/termhost/internal/server"
	"github.com/remote-tui/termhost/internal/session"
	"github.com/remote-tui/termhost/internal/sshd"
)

func main() {
	// .env is optional; real deployments set the environment directly
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log := logger.Setup(false)
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log := logger.Setup(cfg.Dev)

	// The host key is the one hard startup requirement: fail before
	// listening.
	hostKey, err := hostkey.Load(cfg.HostKeyPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load host key")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		log.Fatal().Err(err).Msg("failed to create database directory")
	}
	if cfg.RecordDir != "" {
		if err := os.MkdirAll(cfg.RecordDir, 0755); err != nil {
			log.Fatal().Err(err).Msg("failed to create recording directory")
		}
	}

	database, err := db.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.CloseDB()

	history := repository.NewHistoryRepository(database)
	registry := session.NewRegistry()

	handler := server.NewHandler(registry, app.NewDashboard, server.Config{
		RecordDir: cfg.RecordDir,
		History:   history,
	}, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renderer := session.NewRenderer(registry, cfg.FrameInterval, log)
	go renderer.Run(ctx)

	reaper := session.NewReaper(registry, cfg.SweepInterval, cfg.IdleTimeout, log)
	reaper.Evicted = func(s *session.Session) {
		if err := history.Finish(context.Background(), s.ID, time.Now(), session.ReasonIdleTimeout); err != nil {
			log.Warn().Err(err).Uint64("session", s.ID).Msg("failed to record session end")
		}
	}
	go reaper.Run(ctx)

	hub := monitor.NewHub()
	broadcaster := monitor.NewBroadcaster(hub, registry, time.Second, log)
	go broadcaster.Run(ctx)

	if !cfg.Dev {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	statusHandler := handlers.NewStatusHandler(registry, history)
	monitorHandler := handlers.NewMonitorHandler(hub)

	r.GET("/health", statusHandler.Health)
	api := r.Group("/api")
	{
		statusHandler.RegisterRoutes(api)
		monitorHandler.RegisterRoutes(api)
	}

	go func() {
		log.Info().Str("addr", cfg.APIAddr).Msg("ops api listening")
		if err := r.Run(cfg.APIAddr); err != nil {
			log.Fatal().Err(err).Msg("ops api failed")
		}
	}()

	// Graceful shutdown: stop the background loops, reset and close
	// every live session, then release shared resources.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down")
		cancel()
		handler.Shutdown()
		hub.Close()
		db.CloseDB()
		os.Exit(0)
	}()

	sshServer := sshd.New(hostKey, handler, cfg.ListenAddr, log)
	if err := sshServer.ListenAndServe(ctx); err != nil {
		log.Fatal().Err(err).Msg("ssh server failed")
	}
}
