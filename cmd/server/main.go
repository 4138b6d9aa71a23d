package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"case_docket_app_go/config"
	"case_docket_app_go/db"
	"case_docket_app_go/handlers"
	"case_docket_app_go/logger"
	"case_docket_app_go/models"
	"case_docket_app_go/services"
	"case_docket_app_go/services/jobs"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg := config.Load()

	zlog, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize database
	database, err := db.Open(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close(database)

	// Run migrations
	if err := db.AutoMigrate(database, models.All()...); err != nil {
		zlog.Fatal("failed to run migrations", zap.Error(err))
	}

	if _, err := services.SeedDefaultAdmin(database, cfg.DefaultAdminPassword, zlog); err != nil {
		zlog.Fatal("failed to seed default admin", zap.Error(err))
	}

	storage := services.InitializeStorage(cfg, zlog)
	app := handlers.NewApp(cfg, database, storage, zlog)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				zlog.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			zlog.Info("request", fields...)
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	app.Mount(e)

	// Hourly session cleanup
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@hourly", func() {
		removed, err := services.CleanupExpiredSessions(database)
		if err != nil {
			zlog.Error("failed to clean up expired sessions", zap.Error(err))
			return
		}
		if removed > 0 {
			zlog.Info("expired sessions removed", zap.Int64("count", removed))
		}
	}); err != nil {
		zlog.Fatal("failed to schedule session cleanup", zap.Error(err))
	}
	// Daily digest of the next day's proceedings
	if _, err := scheduler.AddFunc("0 7 * * *", func() {
		if _, err := jobs.SendProceedingReminders(database, cfg, zlog, time.Now()); err != nil {
			zlog.Error("proceeding reminder job failed", zap.Error(err))
		}
	}); err != nil {
		zlog.Fatal("failed to schedule proceeding reminders", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server
	go func() {
		zlog.Info("server starting", zap.String("port", cfg.ServerPort), zap.String("environment", cfg.Environment))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error("graceful shutdown failed", zap.Error(err))
	}
}
