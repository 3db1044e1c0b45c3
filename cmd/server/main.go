package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mjnutrafit/coaching-api/internal/api"
	"mjnutrafit/coaching-api/internal/config"
	"mjnutrafit/coaching-api/internal/logger"
	"mjnutrafit/coaching-api/internal/ratelimit"
	"mjnutrafit/coaching-api/internal/service"
)

// runContext is handed to every command by kong.
type runContext struct {
	cfg config.Config
	log *logrus.Logger
}

var CLI struct {
	Config string `help:"Directory containing config.yaml." type:"path" default:"."`

	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API." default:"1"`
	Migrate MigrateCmd `cmd:"" help:"Create or update the database schema and exit."`
}

// @title MJNutraFit Coaching API
// @version 1.0
// @description Coaches approve clients, author diet/workout plans and review weekly progress logs.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("server"),
		kong.Description("Coach/client progress tracking API"),
		kong.UsageOnError(),
	)

	// --- Configuration ---
	cfg, err := config.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not set up logging: %v\n", err)
		os.Exit(1)
	}

	if err := kctx.Run(&runContext{cfg: cfg, log: log}); err != nil {
		log.WithError(err).Fatal("command failed")
	}
}

type MigrateCmd struct{}

func (MigrateCmd) Run(rc *runContext) error {
	store, err := openStore(rc.cfg.Database, rc.log)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("schema sync failed: %w", err)
	}
	rc.log.WithField("driver", rc.cfg.Database.Driver).Info("schema is up to date")
	return nil
}

type ServeCmd struct {
	SkipMigrate bool `help:"Do not sync the schema on startup."`
}

func (cmd ServeCmd) Run(rc *runContext) error {
	cfg, log := rc.cfg, rc.log
	log.WithFields(logrus.Fields{"mode": cfg.Server.Mode, "driver": cfg.Database.Driver}).Info("Starting coaching API server...")

	// --- Database Connection ---
	store, err := openStore(cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("Closing database connection...")
		if err := store.Close(); err != nil {
			log.WithError(err).Error("failed to close database")
		}
	}()

	// --- Schema Sync ---
	// A failed sync is logged and the server starts anyway.
	if !cmd.SkipMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := store.Migrate(ctx); err != nil {
			log.WithError(err).Warn("schema sync failed, continuing")
		}
		cancel()
	}

	// --- Supporting Infrastructure ---
	images, err := newImageStore(cfg.S3, log)
	if err != nil {
		return err
	}
	publisher := newPublisher(cfg.AMQP, log)
	defer publisher.Close()

	rdb := ratelimit.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	} else if cfg.Redis.Addr != "" {
		log.WithField("addr", cfg.Redis.Addr).Warn("redis unreachable, rate limiting disabled")
	}
	limiter := ratelimit.New(rdb, cfg.RateLimit, log)

	// --- Initialize Services ---
	tokens := service.NewTokenIssuer(cfg.JWT)
	services := api.Services{
		Auth:      service.NewAuthService(store.Users, tokens, log),
		Users:     service.NewUserService(store.Users, images, cfg.S3.Folder, log),
		Coach:     service.NewCoachService(store.Users, store.Plans, store.Progress, store.Feedback, store.Reports, publisher, log),
		Plans:     service.NewPlanService(store.Users, store.Plans),
		Progress:  service.NewProgressService(store.Plans, store.Progress, publisher, log),
		Dashboard: service.NewDashboardService(store.Plans, store.Progress, store.Reports),
	}

	// --- Initialize Gin Engine ---
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.RouterOptions{
		Log:            log,
		Production:     cfg.Server.IsProduction(),
		AllowedOrigins: cfg.Server.AllowedOrigins(),
		Limiter:        limiter,
	}, services)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Server starting on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}
	log.Info("Shutting down server...")

	// The server has 5 seconds to finish the requests it is currently handling
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exiting.")
	return nil
}
