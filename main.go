package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/prepline/prepline-engine/pkg/auth"
	"github.com/prepline/prepline-engine/pkg/config"
	"github.com/prepline/prepline-engine/pkg/database"
	"github.com/prepline/prepline-engine/pkg/handlers"
	"github.com/prepline/prepline-engine/pkg/logging"
	"github.com/prepline/prepline-engine/pkg/middleware"
	"github.com/prepline/prepline-engine/pkg/repositories"
	"github.com/prepline/prepline-engine/pkg/retry"
	"github.com/prepline/prepline-engine/pkg/services"
	"github.com/prepline/prepline-engine/pkg/uploads"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var logger *zap.Logger
	if cfg.Env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("base_url", cfg.BaseURL),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())))

	ctx := context.Background()

	db, err := retry.DoWithResult(ctx, retry.DefaultConfig(), func() (*database.DB, error) {
		return database.NewConnection(ctx, &database.Config{
			URL:            cfg.Database.ConnectionString(),
			MaxConnections: cfg.Database.MaxConnections,
		})
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db.StdDB(), logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Repositories
	ccpRepo := repositories.NewCCPRepository(db)
	checkRepo := repositories.NewCheckRepository(db)
	incidentRepo := repositories.NewIncidentRepository(db)
	actionRepo := repositories.NewCorrectiveActionRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	staffRepo := repositories.NewStaffRepository(db)
	reportRepo := repositories.NewReportRepository(db)

	// Collaborators
	uploader, err := uploads.NewLocalUploader(cfg.Uploads.Dir, cfg.Uploads.PublicBaseURL, cfg.Uploads.MaxSizeBytes)
	if err != nil {
		logger.Fatal("Failed to initialize upload storage", zap.Error(err))
	}

	// Services
	notificationService := services.NewNotificationService(
		notificationRepo, staffRepo,
		cfg.Notifications.OpsMailbox,
		time.Duration(cfg.Notifications.DispatchTimeoutSeconds)*time.Second,
		logger)
	checkService := services.NewCheckService(ccpRepo, checkRepo, incidentRepo, reportRepo, notificationService, logger)
	actionService := services.NewCorrectiveActionService(checkRepo, incidentRepo, actionRepo, uploader, notificationService, logger)
	incidentService := services.NewIncidentService(incidentRepo, logger)

	// HTTP surface
	api := http.NewServeMux()
	handlers.NewCCPHandler(ccpRepo, logger).RegisterRoutes(api)
	handlers.NewCheckHandler(checkService, logger).RegisterRoutes(api)
	handlers.NewCorrectiveActionHandler(actionService, logger).RegisterRoutes(api)
	handlers.NewIncidentHandler(incidentService, logger).RegisterRoutes(api)
	handlers.NewNotificationHandler(notificationRepo, logger).RegisterRoutes(api)

	tokenParser := auth.NewTokenParser(cfg.Auth.SigningKey, cfg.Auth.EnableVerification)
	authenticated := auth.Middleware(tokenParser, logger)(api)

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	mux.Handle("/api/", authenticated)
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Uploads.Dir))))

	server := middleware.RequestLogger(logger)(mux)

	logger.Info("Starting prepline-engine",
		zap.String("addr", cfg.BindAddr+":"+cfg.Port),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(cfg.BindAddr+":"+cfg.Port, server); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
