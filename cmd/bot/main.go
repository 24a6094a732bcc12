package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"overseerr-approval-bot/internal/allowlist"
	"overseerr-approval-bot/internal/auth"
	"overseerr-approval-bot/internal/config"
	"overseerr-approval-bot/internal/notify"
	"overseerr-approval-bot/internal/overseerr"
	"overseerr-approval-bot/internal/telegram"
	"overseerr-approval-bot/internal/webhook"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	var logLevel slog.Level
	switch cfg.Logging.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	var handler slog.Handler
	if cfg.Logging.JSONFormat {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Create root context with cancellation
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// WaitGroup for tracking active goroutines
	var wg sync.WaitGroup

	// Open the allowlist store
	store, err := allowlist.NewSQLiteStore(cfg.Storage.DBPath)
	if err != nil {
		logger.Error("failed to open allowlist store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Initialize Overseerr client and security components
	overseerrClient := overseerr.NewClient(cfg.Overseerr, logger)
	credentials := auth.NewCredentials(cfg.Auth.AdminPasswordHash)
	throttle := auth.NewThrottle(cfg.Auth.MaxLoginAttempts, cfg.Auth.LockoutWindow)
	tracker := notify.NewTracker()

	// Initialize Telegram bot
	botHandler := telegram.NewHandler(store, credentials, throttle, overseerrClient, tracker, cfg, logger)
	bot, err := telegram.NewBot(cfg.Telegram, botHandler, logger)
	if err != nil {
		logger.Error("failed to create telegram bot", "error", err)
		os.Exit(1)
	}

	// Initialize notice dispatcher and webhook server
	dispatcher := notify.NewDispatcher(
		bot.API(), overseerrClient, tracker, cfg.Telegram.ChatID, cfg.Messages, logger)
	webhookHandler := webhook.NewHandler(cfg.Webhook.Secret, dispatcher, logger)
	server := webhook.NewServer(cfg.Webhook.ListenAddr, webhookHandler, logger)

	// Reload message formatting when the config file changes
	cfg.WatchMessages(logger)

	// Start bot in goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := bot.Run(rootCtx); err != nil && err != context.Canceled {
			logger.Error("bot error", "error", err)
		}
	}()

	// Start webhook server in goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Run(rootCtx); err != nil && err != context.Canceled {
			logger.Error("webhook server error", "error", err)
			rootCancel()
		}
	}()

	logger.Info("service started",
		"chat_id", cfg.Telegram.ChatID,
		"overseerr_url", cfg.Overseerr.BaseURL,
		"listen_addr", cfg.Webhook.ListenAddr,
	)

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig)
	case <-rootCtx.Done():
	}

	// Cancel root context to signal all goroutines
	rootCancel()

	// Wait for graceful shutdown with timeout
	shutdownTimeout := 30 * time.Second
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("graceful shutdown complete")
	case <-time.After(shutdownTimeout):
		logger.Warn("shutdown timeout exceeded, forcing exit")
	}
}
