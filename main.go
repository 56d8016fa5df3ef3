package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/viewtube-app/viewtube-be/internal/api"
	"github.com/viewtube-app/viewtube-be/internal/api/handlers"
	"github.com/viewtube-app/viewtube-be/internal/auth"
	"github.com/viewtube-app/viewtube-be/internal/config"
	"github.com/viewtube-app/viewtube-be/internal/database"
	"github.com/viewtube-app/viewtube-be/internal/logger"
	"github.com/viewtube-app/viewtube-be/internal/media"
	"github.com/viewtube-app/viewtube-be/internal/monitoring"
	"github.com/viewtube-app/viewtube-be/internal/services"
)

func main() {
	// A .env file is optional; real environments set the variables directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.AppEnv)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up the media host client
	uploader, err := media.NewS3Uploader(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize media uploader")
	}

	// Set up token issuer and services
	issuer := auth.NewTokenIssuer(cfg)
	sessionService := services.NewSessionService(db, issuer)
	profileService := services.NewProfileService(db, uploader)
	subscriptionService := services.NewSubscriptionService(db)

	// Set up and run the background session sweeper
	sweeper, err := monitoring.NewSessionSweeper(db, cfg.SessionSweepSchedule)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize session sweeper")
	}
	go sweeper.Run()

	// Set up router
	userHandler := handlers.NewUserHandler(sessionService, profileService, cfg.RefreshTokenExpiry)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	router := api.NewRouter(cfg.CORSOrigin, issuer, userHandler, subscriptionHandler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	sweeper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
