package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pcrawford/timeclock/internal/database"
	"github.com/pcrawford/timeclock/internal/logging"
	"github.com/pcrawford/timeclock/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("TIMECLOCK_LOG_LEVEL"))

	port := os.Getenv("TIMECLOCK_PORT")
	if port == "" {
		port = "8000"
	}

	dbPath := os.Getenv("TIMECLOCK_DB_PATH")
	if dbPath == "" {
		dbPath = "timeclock.db"
	}

	tokenSecret := os.Getenv("TIMECLOCK_TOKEN_SECRET")
	if tokenSecret == "" {
		logger.Error("TIMECLOCK_TOKEN_SECRET is required")
		os.Exit(1)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.New(db, server.Config{
		TokenSecret: tokenSecret,
		TokenTTL:    24 * time.Hour,
	}, logger)

	// Hourly cleanup of expired sessions and stale rate-limit entries
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					logger.Info("session cleanup", "deleted", n)
				}
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Timeclock running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
