package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/classpad/classpad-backend/internal/config"
	"github.com/classpad/classpad-backend/internal/database"
	"github.com/classpad/classpad-backend/internal/handler"
	"github.com/classpad/classpad-backend/internal/logger"
	"github.com/classpad/classpad-backend/internal/repository"
	"github.com/classpad/classpad-backend/internal/router"
	"github.com/classpad/classpad-backend/internal/service"
	"github.com/classpad/classpad-backend/internal/storage"
	"github.com/classpad/classpad-backend/internal/validator"
	"github.com/classpad/classpad-backend/internal/worker"
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
		Msg("Starting ClassPad Backend")

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

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize File Store ─────────────────────────────────────────
	fileStore := storage.NewLocalStore(cfg.UploadDir, cfg.PublicBaseURL, []byte(cfg.FileSignSecret))

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	classRepo := repository.NewClassRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, userRepo, rdb)
	classService := service.NewClassService(classRepo, assignmentRepo, enrollmentRepo, rdb, log)
	enrollmentService := service.NewEnrollmentService(classRepo, enrollmentRepo, rdb, log)
	assignmentService := service.NewAssignmentService(assignmentRepo, classRepo, log)
	submissionService := service.NewSubmissionService(
		submissionRepo,
		assignmentRepo,
		enrollmentRepo,
		classRepo,
		userRepo,
		fileStore,
		rdb,
		cfg.SignedURLTTL,
		log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Class:      handler.NewClassHandler(classService, enrollmentService),
		Assignment: handler.NewAssignmentHandler(assignmentService, submissionService),
		Student:    handler.NewStudentHandler(enrollmentService, classService, submissionService),
		Submission: handler.NewSubmissionHandler(submissionService),
		File:       handler.NewFileHandler(fileStore),
		WS:         handler.NewWSHandler(rdb, classService, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	orphanWorker := worker.NewOrphanWorker(submissionRepo, cfg.UploadDir, cfg.JanitorInterval, log)
	go orphanWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
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

	// 2. Stop the background worker.
	workerCancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
