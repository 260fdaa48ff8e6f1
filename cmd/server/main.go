package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stocktr-api/internal/config"
	"github.com/stocktr-api/internal/database"
	"github.com/stocktr-api/internal/middleware"
	"github.com/stocktr-api/internal/repository"
	"github.com/stocktr-api/internal/router"
	"github.com/stocktr-api/internal/service"
	"github.com/stocktr-api/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logCloser, err := middleware.InitLogger(middleware.LoggerConfig{
		Dir:        cfg.Log.Dir,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := database.Open(cfg.Database.DSN(), cfg.Server.Mode)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	if err := database.AutoMigrate(db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	rdb := initRedis(cfg)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	watchlistRepo := repository.NewWatchlistRepository(db)

	// Initialize services
	tokenService := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.TokenTTL())
	authService := service.NewAuthService(userRepo, tokenService, cfg.Auth.BcryptCost)
	watchlistService := service.NewWatchlistService(watchlistRepo)
	quoteService := service.NewQuoteService(rdb, service.QuoteServiceConfig{
		BaseURL:  cfg.Quotes.BaseURL,
		APIKey:   cfg.Quotes.APIKey,
		Symbols:  cfg.Quotes.Symbols,
		Timeout:  time.Duration(cfg.Quotes.TimeoutSeconds) * time.Second,
		CacheTTL: time.Duration(cfg.Quotes.CacheTTLSeconds) * time.Second,
	})
	profileService := service.NewProfileService(userRepo, cfg.Icon.MaxBytes)

	engine := router.New(router.Deps{
		DB:             db,
		Redis:          rdb,
		Tokens:         tokenService,
		Auth:           authService,
		Watchlist:      watchlistService,
		Quotes:         quoteService,
		Profile:        profileService,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	refresher := worker.NewQuoteRefresher(
		quoteService,
		time.Duration(cfg.Quotes.RefreshIntervalSeconds)*time.Second,
		time.Duration(cfg.Quotes.TimeoutSeconds)*time.Second,
	)
	go refresher.Start()

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:      time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	refresher.Stop()

	// Graceful shutdown with 10 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			slog.Error("error closing redis connection", "error", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	slog.Info("server exited properly")
}

// initRedis returns nil when the quote cache is disabled
func initRedis(cfg *config.Config) *redis.Client {
	if !cfg.Redis.Enabled {
		slog.Info("redis disabled, quote cache off")
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, quote cache will be bypassed until it recovers", "addr", cfg.Redis.Addr(), "error", err)
	}
	return rdb
}
