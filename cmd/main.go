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

	"github.com/go-chi/chi/v5"
	"github.com/hexisle/island-conquest/config"
	"github.com/hexisle/island-conquest/db"
	"github.com/hexisle/island-conquest/handlers"
	"github.com/hexisle/island-conquest/models"
	"github.com/hexisle/island-conquest/realtime"
	"github.com/hexisle/island-conquest/repositories"
	api "github.com/hexisle/island-conquest/routes"
	"github.com/hexisle/island-conquest/scheduler"
	"github.com/hexisle/island-conquest/services"
	"github.com/hexisle/island-conquest/storage"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

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
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(dbConn); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("migrations applied")

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	hub := realtime.NewHub(logger)
	go hub.Run()
	logger.Info("websocket hub started")

	adminRepo := repositories.NewPostgresAdminRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	sessionRepo := repositories.NewPostgresSessionRepository(dbConn)
	hostRepo := repositories.NewPostgresGameHostRepository(dbConn)
	gameRepo := repositories.NewPostgresLiveGameRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)

	authService := services.NewAuthService(adminRepo, []byte(cfg.JWTSecretKey))
	tournamentService := services.NewTournamentService(tournamentRepo, sessionRepo, uploader, hub, logger)
	liveGameService := services.NewLiveGameService(gameRepo, hostRepo, hub, logger)
	playerService := services.NewPlayerService(playerRepo)

	transitioner := scheduler.NewTransitioner(sessionRepo, hostRepo, liveGameService, logger)
	callbacks := func(tournamentID int) scheduler.Callbacks {
		room := realtime.TournamentRoom(tournamentID)
		return scheduler.Callbacks{
			OnSessionActivated: func(s *models.TournamentSession) {
				hub.BroadcastToRoom(room, realtime.MessageSessionActivated, s)
			},
			OnSessionCompleted: func(s *models.TournamentSession) {
				hub.BroadcastToRoom(room, realtime.MessageSessionCompleted, s)
			},
			OnSessionsChanged: func() {
				hub.BroadcastToRoom(room, realtime.MessageSessionsChanged, nil)
			},
		}
	}
	manager := scheduler.NewManager(tournamentRepo, transitioner, callbacks, logger)
	checks := scheduler.NewCheckRegistry(tournamentRepo, transitioner, callbacks, logger)

	authHandler := handlers.NewAuthHandler(authService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, checks)
	liveGameHandler := handlers.NewLiveGameHandler(liveGameService)
	playerHandler := handlers.NewPlayerHandler(playerService)
	webSocketHandler := handlers.NewWebSocketHandler(hub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		[]byte(cfg.JWTSecretKey),
		authHandler,
		tournamentHandler,
		liveGameHandler,
		playerHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		logger.Info("session scheduler started")
		if err := manager.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("session scheduler: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}
