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

	"github.com/mattzyzz/LMS-sub000/internal/cache"
	"github.com/mattzyzz/LMS-sub000/internal/config"
	"github.com/mattzyzz/LMS-sub000/internal/handlers"
	"github.com/mattzyzz/LMS-sub000/internal/repositories/postgres"
	"github.com/mattzyzz/LMS-sub000/internal/services"
	"github.com/mattzyzz/LMS-sub000/internal/validator"
	"github.com/mattzyzz/LMS-sub000/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Environment)
	slog.SetDefault(logger)

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	var cacheService cache.CacheService = cache.NoopCache{}
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		// Redis is an optimization, not a dependency: serve from the
		// database until it comes back.
		logger.Warn("Redis unavailable, quiz definition caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, logger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		logger.Error("Failed to create event publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	repo := postgres.NewRepository(db)
	v := validator.New()

	quizService := services.NewQuizService(repo, cacheService, cfg.QuizCacheTTL, logger, v)
	attemptService := services.NewAttemptService(repo, publisher, logger, v)
	importExportService := services.NewImportExportService(repo, cacheService, logger)

	quizHandler := handlers.NewQuizHandler(quizService, importExportService, attemptService, logger)
	attemptHandler := handlers.NewAttemptHandler(attemptService, logger)

	router := handlers.SetupRouter(quizHandler, attemptHandler, logger, cfg.Environment)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("Starting quiz service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", "error", err)
	}
}

func newLogger(environment string) *slog.Logger {
	if environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
