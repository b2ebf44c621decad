package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cashtrackr/cashtrackr/internal/database"
	"github.com/cashtrackr/cashtrackr/internal/email"
	"github.com/cashtrackr/cashtrackr/internal/logging"
	"github.com/cashtrackr/cashtrackr/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("CASHTRACKR_LOG_LEVEL"))

	port := os.Getenv("CASHTRACKR_PORT")
	if port == "" {
		port = "4000"
	}

	dbPath := os.Getenv("CASHTRACKR_DB_PATH")
	if dbPath == "" {
		dbPath = "cashtrackr.db"
	}

	jwtSecret := os.Getenv("CASHTRACKR_JWT_SECRET")
	if jwtSecret == "" {
		slog.Error("CASHTRACKR_JWT_SECRET is required")
		os.Exit(1)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Email config
	postmarkToken := os.Getenv("CASHTRACKR_POSTMARK_TOKEN")
	fromEmail := os.Getenv("CASHTRACKR_FROM_EMAIL")
	frontendURL := os.Getenv("CASHTRACKR_FRONTEND_URL")
	emailClient := email.NewClient(postmarkToken, fromEmail, frontendURL)

	cfg := server.Config{
		JWTSecret:   []byte(jwtSecret),
		EmailClient: emailClient,
	}

	srv := server.New(db, cfg, logger)

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Background cleanup goroutine
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		slog.Info("cashtrackr API starting", "addr", ":"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	cleanupCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
