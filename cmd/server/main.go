package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/catprepedge/catprep-backend/internal/config"
	"github.com/catprepedge/catprep-backend/internal/database"
	"github.com/catprepedge/catprep-backend/internal/handler"
	"github.com/catprepedge/catprep-backend/internal/logger"
	"github.com/catprepedge/catprep-backend/internal/repository"
	"github.com/catprepedge/catprep-backend/internal/router"
	"github.com/catprepedge/catprep-backend/internal/service"
	"github.com/catprepedge/catprep-backend/internal/validator"
	"github.com/catprepedge/catprep-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting CATPrep Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	gormDB, err := database.NewGormDB(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open blog store")
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	progressRepo := repository.NewProgressRepository(pool)
	postRepo := repository.NewPostRepository(gormDB)
	commentRepo := repository.NewCommentRepository(gormDB)

	resourceRepo, err := repository.NewResourceRepository(cfg.LibraryMetadataPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.LibraryMetadataPath).Msg("Failed to load library metadata")
	}
	collegeRepo, err := repository.NewCollegeRepository(cfg.CollegesDataPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.CollegesDataPath).Msg("Failed to load colleges")
	}

	var questionSource repository.QuestionSource
	if cfg.QuestionSourceURL != "" {
		questionSource = repository.NewHTTPQuestionSource(cfg.QuestionSourceURL, nil)
		log.Info().Str("url", cfg.QuestionSourceURL).Msg("Questions served from HTTP source")
	} else {
		questionSource = repository.NewFileQuestionSource(cfg.QuestionDataDir)
		log.Info().Str("dir", cfg.QuestionDataDir).Msg("Questions served from local files")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(userRepo, authService)
	questionService := service.NewQuestionService(questionSource, rdb, cfg.QuestionCacheTTL, log)
	progressService := service.NewProgressService(progressRepo, rdb)
	tracker := service.NewSessionTracker(rdb)
	postService := service.NewPostService(postRepo, commentRepo)
	libraryService := service.NewLibraryService(resourceRepo)
	collegeService := service.NewCollegeService(collegeRepo)
	catalogService := service.NewCatalogService()
	paymentService := service.NewPaymentService(cfg, userService, nil, log)
	mediaService := service.NewMediaService(cfg)

	// ─── Initialize Handlers ──────────────────────────────────────────
	authHandler := handler.NewAuthHandler(cfg, authService, userService, log)
	handlers := &router.Handlers{
		Auth:     authHandler,
		Catalog:  handler.NewCatalogHandler(catalogService),
		Question: handler.NewQuestionHandler(questionService),
		WS:       handler.NewWSHandler(questionService, progressService, tracker, cfg.TestDuration, log, cfg.AllowedOrigins),
		Progress: handler.NewProgressHandler(progressService),
		Post:     handler.NewPostHandler(postService, userService, log),
		Library:  handler.NewLibraryHandler(libraryService),
		College:  handler.NewCollegeHandler(collegeService),
		Payment:  handler.NewPaymentHandler(paymentService, authHandler, log),
		Media:    handler.NewMediaHandler(mediaService),
		System:   handler.NewSystemHandler(pool, rdb, tracker, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	progressWorker := worker.NewProgressWorker(progressRepo, rdb, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		progressWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the progress queue to drain.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
