package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/marquee/internal/config"
	"github.com/Nixie-Tech-LLC/marquee/internal/db"
	"github.com/Nixie-Tech-LLC/marquee/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/marquee/internal/redis"
	"github.com/Nixie-Tech-LLC/marquee/internal/signage"
)

func main() {
	// load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	// initialize PostgreSQL
	if err := db.Init(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init")
	}
	defer db.DB.Close()

	// run pending migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	store := db.NewStore(db.DB)
	opts := []signage.Option{signage.WithArchive(InitStorage(cfg))}

	if cfg.RedisEnabled() {
		redis.InitRedis(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
		defer redis.Close()
		if err := redis.Ping(context.Background()); err != nil {
			log.Warn().Err(err).Str("address", cfg.RedisAddress).Msg("redis not reachable yet")
		}
		opts = append(opts, signage.WithDeduper(redis.NewDeduper(redis.Rdb, cfg.IdempotencyPendingTTL, cfg.IdempotencyTTL)))
		if cfg.DashboardCacheTTL > 0 {
			opts = append(opts, signage.WithDashboardCache(redis.NewDashboardCache(redis.Rdb, cfg.DashboardCacheTTL)))
		}
	}

	if cfg.MQTTEnabled() {
		middleware.SetBrokerURL(cfg.MQTTBrokerURL)
		client, err := middleware.CreateMQTTClient(cfg.MQTTClientID)
		if err != nil {
			// telemetry is best effort; the API works without it
			log.Error().Err(err).Msg("MQTT unavailable, telemetry disabled")
		} else {
			publisher := middleware.NewTelemetryPublisher(client)
			defer publisher.Close()
			opts = append(opts, signage.WithPublisher(publisher))
		}
	}

	svc := signage.NewService(store, signage.Config{
		StoreTimeout:   cfg.StoreTimeout,
		ActivityWindow: cfg.ActivityWindow,
		TopItemsLimit:  cfg.TopItemsLimit,
	}, opts...)

	// set up gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r, err := newRouter(cfg)
	if err != nil {
		log.Fatal().Err(err).Strs("trusted_proxies", cfg.TrustedProxies).Msg("router setup")
	}
	RegisterRoutes(r, cfg, svc)

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.ServerAddress).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
