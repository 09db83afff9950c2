package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/appealdesk/appealdesk/internal/api/handlers"
	"github.com/appealdesk/appealdesk/internal/api/router"
	"github.com/appealdesk/appealdesk/internal/config"
	"github.com/appealdesk/appealdesk/internal/pkg/logger"
	"github.com/appealdesk/appealdesk/internal/pkg/validator"
	"github.com/appealdesk/appealdesk/internal/providers"
	"github.com/appealdesk/appealdesk/internal/repository/postgres"
	"github.com/appealdesk/appealdesk/internal/services"
	"github.com/appealdesk/appealdesk/internal/worker"
	"github.com/appealdesk/appealdesk/migrations"
)

// @title AppealDesk API
// @version 1.0
// @description Appeal lifecycle and quota-gated letter generation for clinics
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	db, err := postgres.New(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, migrations.GetFS()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Info("Database migrations applied")

	// Repositories
	profileRepo := postgres.NewProfileRepository(db)
	appealRepo := postgres.NewAppealRepository(db)

	// Letter provider; nil falls back to the template
	var generator providers.LetterGenerator
	if g := providers.NewOpenAILetterGenerator(cfg.Provider.OpenAIAPIKey, cfg.Provider.OpenAIModel, cfg.Provider.Timeout); g != nil {
		generator = g
		log.Info("OpenAI letter generation enabled")
	} else {
		log.Warn("OPENAI_API_KEY not set, letters will use the fallback template")
	}

	// Services
	profileService := services.NewProfileService(profileRepo, cfg.Auth, cfg.Quota, log)
	appealService := services.NewAppealService(appealRepo, profileRepo, generator, cfg.Quota, log)

	// Handlers
	val := validator.New()
	h := &router.Handlers{
		Health: handlers.NewHealthHandler(db, log),
		Auth:   handlers.NewAuthHandler(profileService, cfg, log, val),
		Appeal: handlers.NewAppealHandler(appealService, log, val),
		Letter: handlers.NewLetterHandler(appealService, log),
		Admin:  handlers.NewAdminHandler(profileService, log, val),
	}

	// Background trial sweeper
	var sweeper *worker.TrialSweeper
	if cfg.Worker.TrialSweepEnabled {
		sweeper, err = worker.NewTrialSweeper(profileRepo, cfg.Worker.TrialSweepSchedule, log)
		if err != nil {
			log.Fatalf("Invalid trial sweep schedule: %v", err)
		}
		if err := sweeper.Start(); err != nil {
			log.Fatalf("Failed to start trial sweeper: %v", err)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infof("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")

	if sweeper != nil {
		sweeper.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Info("Server stopped")
}
