package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"mail-webhook-relay/internal/auth"
	"mail-webhook-relay/internal/config"
	"mail-webhook-relay/internal/database"
	"mail-webhook-relay/internal/handler"
	"mail-webhook-relay/internal/metrics"
	"mail-webhook-relay/internal/pipeline"
	"mail-webhook-relay/internal/router"
	"mail-webhook-relay/internal/store"
	"mail-webhook-relay/internal/sweeper"
)

// Run initializes and starts the application
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting Mail Webhook Relay")

	// A local .env is optional; real deployments set the environment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	db, err := database.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metrics.NewMetrics()
	s := store.New(db)
	p := pipeline.New(s, cfg.Retention.RetentionWindow(), m)
	a := auth.NewManager(cfg.Auth)

	var sw *sweeper.Sweeper
	if cfg.Sweeper.Enabled {
		sw = sweeper.New(&cfg.Sweeper, p)
		if err := sw.Start(); err != nil {
			return fmt.Errorf("failed to start sweeper: %w", err)
		}
	}

	h := handler.NewHandlers(db, s, p, a, sw, m, cfg)
	r := router.SetupRouter(h)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sw != nil {
		if err := sw.Stop(); err != nil {
			logrus.Errorf("Failed to stop sweeper: %v", err)
		}
		sw.Wait()
	}

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	logrus.Info("Server stopped gracefully")
	return nil
}
