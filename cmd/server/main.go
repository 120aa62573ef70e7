// Package main is the platewatch server entry point. It wires the store,
// cache, services and HTTP surfaces together and handles graceful shutdown
// on SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/platewatch/platewatch/internal/api"
	"github.com/platewatch/platewatch/internal/cache"
	"github.com/platewatch/platewatch/internal/config"
	"github.com/platewatch/platewatch/internal/repository"
	"github.com/platewatch/platewatch/internal/service/analytics"
	"github.com/platewatch/platewatch/internal/service/badges"
	"github.com/platewatch/platewatch/internal/service/progression"
	"github.com/platewatch/platewatch/internal/service/scheduler"
	"github.com/platewatch/platewatch/internal/service/tagging"
	"github.com/platewatch/platewatch/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("Starting platewatch server")

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() { _ = db.Close() }()

	if err := db.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	redisCache, err := cache.NewRedisCache(&cfg.Database.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer func() { _ = redisCache.Close() }()

	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)

	catalog, err := badges.CatalogFromConfig(cfg.Badges)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid badge catalog configuration")
	}
	if err := badgeRepo.Seed(catalog); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed badge catalog")
	}

	badgeService := badges.NewService(badgeRepo, userRepo, log)

	rewards := progression.Rewards{
		PositiveReward:       cfg.Rewards.PositiveReward,
		NegativeReward:       cfg.Rewards.NegativeReward,
		LocationBonus:        cfg.Rewards.LocationBonus,
		DetailedReasonBonus:  cfg.Rewards.DetailedReasonBonus,
		DetailedReasonLength: cfg.Rewards.DetailedReasonLength,
	}
	taggingService := tagging.NewService(userRepo, tagRepo, badgeService, rewards, log)

	analyticsService, err := analytics.NewService(tagRepo, userRepo, redisCache, &cfg.Analytics, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize analytics service")
	}

	schedulerService := scheduler.NewService(cfg, badgeService, log)
	if err := schedulerService.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}
	defer schedulerService.Stop()

	handler := api.NewHandler(taggingService, analyticsService, badgeService, userRepo, log)
	router := api.NewRouter(handler, db.Health, cfg.Server.Environment)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.Handler())
		metricsServer = &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			log.Info().Int("port", cfg.Metrics.Port).Str("path", cfg.Metrics.Path).Msg("Metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("Metrics server failed")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Metrics server shutdown failed")
		}
	}

	log.Info().Msg("Server stopped")
}
