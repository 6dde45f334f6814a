package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ai-travel-planner/internal/app"
	"ai-travel-planner/internal/config"
	"ai-travel-planner/internal/telegram"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		app.NewLogger("text", os.Stderr).Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.LogFormat, os.Stderr)

	ctx := context.Background()

	// 2. Wire the planner; its series go to the default registry served on /metrics
	rt, err := app.Bootstrap(ctx, cfg, prometheus.DefaultRegisterer, logger)
	if err != nil {
		logger.Error("Failed to initialize planner", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	// 3. Initialize Telegram Bot
	api, err := telegram.NewBotAPI(cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Telegram Bot", "error", err)
		os.Exit(1)
	}
	sessions := telegram.NewSessionRepository(rt.DB.SQL)
	bot := telegram.NewBot(cfg, api, rt.App, sessions, rt.Collectors, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Post("/webhook", bot.WebhookHandler())
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// 4. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Telegram Bot Server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	logger.Info("Server exiting")
}
