package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/majidsadri/mireva/internal/database"
	"github.com/majidsadri/mireva/internal/email"
	"github.com/majidsadri/mireva/internal/food"
	"github.com/majidsadri/mireva/internal/handler"
	"github.com/majidsadri/mireva/internal/logging"
	"github.com/majidsadri/mireva/internal/server"
	"github.com/majidsadri/mireva/internal/store"
)

func main() {
	// a missing .env is normal in production
	envErr := godotenv.Load()

	logger := logging.Setup(os.Getenv("MIREVA_LOG_LEVEL"), os.Getenv("MIREVA_LOG_FORMAT"))
	if envErr != nil && !os.IsNotExist(envErr) {
		slog.Warn("load .env", "error", envErr)
	}

	port := os.Getenv("MIREVA_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("MIREVA_DB_PATH")
	if dbPath == "" {
		dbPath = "mireva.db"
	}

	matcher := food.Default()
	if dir := os.Getenv("MIREVA_FOOD_TABLES_DIR"); dir != "" {
		m, err := food.LoadDir(dir)
		if err != nil {
			slog.Error("failed to load food tables", "dir", dir, "error", err)
			os.Exit(1)
		}
		matcher = m
		slog.Info("loaded food tables", "dir", dir, "categories", len(m.Categories()))
	}

	cfg := server.Config{
		Matcher:       matcher,
		CORSOrigins:   splitList(os.Getenv("MIREVA_CORS_ORIGINS")),
		SuggestionTTL: durationEnv("MIREVA_SUGGESTION_TTL", handler.DefaultSuggestionTTL),
		SessionTTL:    durationEnv("MIREVA_SESSION_TTL", store.DefaultSessionTTL),
	}

	if token := os.Getenv("MIREVA_POSTMARK_TOKEN"); token != "" {
		cfg.Mailer = email.NewClient(token, os.Getenv("MIREVA_EMAIL_FROM"), os.Getenv("MIREVA_APP_URL"))
		if !cfg.Mailer.Configured() {
			slog.Warn("MIREVA_POSTMARK_TOKEN set without MIREVA_EMAIL_FROM, join emails disabled")
		}
	}

	db, err := database.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.New(db, cfg, logger)

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
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
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					slog.Error("cleanup expired sessions", "error", err)
				} else if n > 0 {
					slog.Info("cleaned up expired sessions", "count", n)
				}
				if n := srv.RateLimiter().Cleanup(); n > 0 {
					slog.Debug("cleaned up rate limit windows", "count", n)
				}
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		slog.Info("mireva starting", "addr", ":"+port, "db", dbPath)
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

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// durationEnv parses a Go duration from key, falling back to def when unset
// or invalid.
func durationEnv(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}
