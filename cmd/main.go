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
	"time"

	"github.com/framefight/arena/brackets"
	"github.com/framefight/arena/config"
	"github.com/framefight/arena/db"
	"github.com/framefight/arena/handlers"
	"github.com/framefight/arena/middleware"
	"github.com/framefight/arena/repositories"
	"github.com/framefight/arena/routes"
	"github.com/framefight/arena/services"
	"github.com/framefight/arena/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewCloudflareR2Uploader(cfg.R2)
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	thumbnailRepo := repositories.NewPostgresThumbnailRepository(dbConn)
	battleRepo := repositories.NewPostgresBattleRepository(dbConn)
	voteRepo := repositories.NewPostgresVoteRepository(dbConn)
	pointsRepo := repositories.NewPostgresPointsRepository(dbConn)
	rewardRepo := repositories.NewPostgresRewardRepository(dbConn)
	markerRepo := repositories.NewPostgresRewardMarkerRepository(dbConn)
	logger.Info("repositories initialized")

	txRunner := services.NewSQLTransactionRunner(dbConn)
	generator := brackets.NewShufflePairingGenerator()

	resolver := services.NewBattleResolver(txRunner, battleRepo, voteRepo, thumbnailRepo, userRepo, pointsRepo, logger)
	distributor := services.NewRewardDistributor(txRunner, markerRepo, rewardRepo, pointsRepo, userRepo, thumbnailRepo, logger)
	progression := services.NewProgressionService(
		txRunner,
		tournamentRepo,
		thumbnailRepo,
		battleRepo,
		userRepo,
		generator,
		resolver,
		distributor,
		logger,
	)

	tournamentService := services.NewTournamentService(tournamentRepo, thumbnailRepo, battleRepo)
	thumbnailService := services.NewThumbnailService(tournamentRepo, thumbnailRepo, uploader)
	voteService := services.NewVoteService(battleRepo, voteRepo)
	profileService := services.NewProfileService(userRepo, pointsRepo, rewardRepo)
	logger.Info("services initialized")

	scheduler := services.NewScheduler(progression, cfg.SchedulerInterval, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error("failed to start progression scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("progression scheduler started", slog.Duration("interval", cfg.SchedulerInterval))

	auth := middleware.NewAuthenticator(cfg.JWTSecretKey)
	router := routes.InitRoutes(auth, routes.Handlers{
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Thumbnail:  handlers.NewThumbnailHandler(thumbnailService),
		Vote:       handlers.NewVoteHandler(voteService),
		Profile:    handlers.NewProfileHandler(profileService),
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}

	if err := scheduler.Stop(); err != nil {
		logger.Error("failed to stop progression scheduler", slog.Any("error", err))
	} else {
		logger.Info("progression scheduler stopped")
	}

	logger.Info("application exited")
}
