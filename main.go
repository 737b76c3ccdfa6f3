package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lexivo/config"
	"lexivo/config/database"
	"lexivo/pkg/cache"
	"lexivo/pkg/logger"
	"lexivo/pkg/openai"
	"lexivo/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info")
		logger.Sugar.Fatalf("Invalid configuration: %v", err)
	}
	logger.Init(cfg.App.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Sugar.Fatalf("Could not connect to database after retries. Check your network or Supabase status: %v", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logger.Sugar.Fatalf("Schema migration failed: %v", err)
		}
	}

	deps := router.Deps{Config: cfg, DB: db}

	if cfg.Cache.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.Cache.RedisURL)
		if err != nil {
			logger.Sugar.Warnf("Redis unavailable, AI responses will not be cached: %v", err)
		} else {
			defer client.Close()
			deps.Cache = cache.NewRedisCache(client, "lexivo:")
		}
	}

	if cfg.OpenAI.AIEnabled() {
		client, err := openai.NewClient(cfg.OpenAI.APIKey,
			openai.WithBaseURL(cfg.OpenAI.BaseURL),
			openai.WithModel(cfg.OpenAI.Model),
			openai.WithRetries(cfg.OpenAI.MaxRetries, cfg.OpenAI.Timeout),
		)
		if err != nil {
			logger.Sugar.Fatalf("Invalid OpenAI configuration: %v", err)
		}
		deps.AI = client
	} else {
		logger.Sugar.Warn("OPENAI_API_KEY is not set, AI features are disabled")
	}

	handler, hub, err := router.Setup(deps)
	if err != nil {
		logger.Sugar.Fatalf("Failed to build router: %v", err)
	}
	go hub.Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		logger.Sugar.Infof("LexivoAI backend listening on :%s (%s)", cfg.Server.Port, cfg.App.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Sugar.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar.Errorf("Graceful shutdown failed: %v", err)
	}
}
