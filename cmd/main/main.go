package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Perchusha/price-checker-v2/internal/config"
	"github.com/Perchusha/price-checker-v2/internal/events"
	"github.com/Perchusha/price-checker-v2/internal/notifier"
	"github.com/Perchusha/price-checker-v2/internal/repository/sqlite"
	"github.com/Perchusha/price-checker-v2/internal/scraper"
	"github.com/Perchusha/price-checker-v2/internal/server"
	"github.com/Perchusha/price-checker-v2/internal/services/aggregator"
	"github.com/Perchusha/price-checker-v2/internal/services/checker"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Local development reads a .env file; in production the variables come
	// from the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	repo, err := sqlite.NewRepository(ctx, logger, cfg.StoragePath)
	if err != nil {
		log.Fatalf("Failed to init storage: %v", err)
	}
	defer repo.Close()

	fetcher := scraper.NewFetcher(logger, cfg.Scraper.SourceTimeout, cfg.Scraper.DirectTimeout)

	var api aggregator.APISearcher
	if cfg.Shopping.APIKey != "" {
		api = scraper.NewShoppingClient(logger, cfg.Shopping.Host, cfg.Shopping.APIKey, cfg.Shopping.Timeout)
	}

	finder := aggregator.New(logger, fetcher, api, scraper.DefaultSources(),
		aggregator.FallbackMode(cfg.Check.OnAllSourcesFailed))

	var notify notifier.Notifier = notifier.Nop{}
	if cfg.Tg.Token != "" {
		tg, tgErr := notifier.NewTelegram(logger, cfg.Tg.Token, cfg.Tg.ChatID, cfg.Tg.Timeout)
		if tgErr != nil {
			log.Fatalf("Failed to init notifier: %v", tgErr)
		}
		notify = tg
	}

	hub := events.NewHub(logger)

	service := checker.NewService(logger, repo, finder, notify, hub,
		cfg.Check.Interval, cfg.Check.StartupDelay)
	service.StartMonitoring(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.New(logger, service, hub).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.InfoContext(ctx, "HTTP server listening", "addr", cfg.HTTPAddr)
		if srvErr := srv.ListenAndServe(); srvErr != nil && !errors.Is(srvErr, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", srvErr)
			stop()
		}
	}()

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
