package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"propchat/internal/cache"
	"propchat/internal/config"
	"propchat/internal/handler"
	"propchat/internal/logging"
	"propchat/internal/repository"
	"propchat/internal/service"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)
	logger.Info("propchat starting", "version", Version, "build_time", BuildTime, "git_commit", GitCommit)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize database connection
	repo, err := repository.NewPostgresRepository(
		cfg.GetPostgreSQLDSN(),
		cfg.PostgreSQL.MaxConnections,
		cfg.PostgreSQL.MaxIdleConnections,
	)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer repo.Close()
	logger.Info("connected to PostgreSQL")

	// Optional search cache
	var (
		resultCache service.ResultCache
		cachePinger handler.Pinger
	)
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis)
		defer redisCache.Close()
		if err := redisCache.Ping(context.Background()); err != nil {
			logger.Warn("redis unreachable, search cache calls will fail open", "addr", cfg.Redis.Addr, "error", err)
		} else {
			logger.Info("search cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.TTL)
		}
		resultCache = redisCache
		cachePinger = redisCache
	}

	// Generation provider; without one the chat endpoint answers with an error frame
	chatModel, err := service.NewChatModel(&cfg.LLM, logger)
	if err != nil {
		logger.Warn("language model disabled", "error", err)
	} else {
		logger.Info("language model ready",
			"provider", cfg.LLM.Provider,
			"backend", cfg.LLM.Backend,
			"model", cfg.LLM.Model,
			"api_base", cfg.LLM.APIBase,
		)
	}

	// Initialize services
	searchService := service.NewSearchService(repo, cfg.Chat.ResultLimit)
	searchTool := service.NewPropertySearchTool(searchService, resultCache, cfg.Redis.Prefix)
	chatService := service.NewChatService(chatModel, searchTool, cfg.Chat)

	router := handler.NewRouter(handler.Routes{
		Chat:           handler.NewChatHandler(chatService),
		Search:         handler.NewSearchHandler(searchTool),
		Health:         handler.NewHealthHandler(repo, cachePinger, handler.BuildInfo{Version: Version, BuildTime: BuildTime, GitCommit: GitCommit}),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("shutting down server", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
