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

	"github.com/meditrack/meditrack-backend/config"
	"github.com/meditrack/meditrack-backend/internal/app/controller"
	"github.com/meditrack/meditrack-backend/internal/app/repository"
	"github.com/meditrack/meditrack-backend/internal/app/service"
	"github.com/meditrack/meditrack-backend/internal/db"
	apperrors "github.com/meditrack/meditrack-backend/internal/errors"
	"github.com/meditrack/meditrack-backend/internal/middleware"
	"github.com/meditrack/meditrack-backend/internal/router"
	"github.com/meditrack/meditrack-backend/internal/storage"
	"github.com/meditrack/meditrack-backend/pkg/logger"
	"github.com/meditrack/meditrack-backend/pkg/mailer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: cfg.Server.Environment == "development",
	})

	logger.Info("Starting MediTrack Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   cfg.Log.Level,
	})

	apperrors.SetExposeDetails(cfg.Server.ExposeErrorDetails)

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	appointmentRepo := repository.NewAppointmentRepository(db.GetDB())

	// Initialize services
	tokens := service.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	authService := service.NewAuthService(userRepo, appointmentRepo, tokens)
	passwordResetService := service.NewPasswordResetService(userRepo, mailer.New(cfg.SMTP), tokens, nil)

	// Initialize controllers
	authController := controller.NewAuthController(authService, passwordResetService)

	var uploadController *controller.UploadController
	if cfg.S3.Bucket != "" {
		s3Storage, err := storage.NewS3Storage(context.Background(), cfg.S3)
		if err != nil {
			logger.Fatal("Failed to initialize S3 storage", err)
		}
		uploadController = controller.NewUploadController(s3Storage)
	} else {
		logger.Warn("AWS_S3_BUCKET is not set, upload routes are disabled")
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	engine := router.NewRouter(authController, uploadController, authMiddleware, cfg).Setup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", err)
	}

	logger.Info("Server stopped successfully")
}
