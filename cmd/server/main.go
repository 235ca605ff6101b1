package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mumernisar/outsmart/internal/config"
	"github.com/mumernisar/outsmart/internal/database"
	"github.com/mumernisar/outsmart/internal/handler"
	"github.com/mumernisar/outsmart/internal/jobs"
	"github.com/mumernisar/outsmart/internal/llm"
	"github.com/mumernisar/outsmart/internal/middleware"
	"github.com/mumernisar/outsmart/internal/pending"
	"github.com/mumernisar/outsmart/internal/redis"
	"github.com/mumernisar/outsmart/internal/repository"
	"github.com/mumernisar/outsmart/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	var cleanupJob *jobs.CleanupJob
	var carrier pending.Carrier

	switch {
	case cfg.PendingCarrier == config.CarrierRedirect:
		carrier = pending.NewURLCarrier(cfg.StateSecret, redisClient.Client, cfg.PendingTTL())
	case cfg.PendingStore == config.StorePostgres:
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
		if err := db.Ping(pingCtx); err != nil {
			log.Fatal().Err(err).Msg("failed to ping database")
		}
		cancel()
		log.Info().Msg("database connected")

		pendingRepo := repository.NewPendingPairingRepository(db.DB)
		carrier = pending.NewPostgresCarrier(pendingRepo, cfg.PendingTTL())

		cleanupJob = jobs.NewCleanupJob(pendingRepo, config.CleanupJobInterval)
		cleanupJob.Start()
		defer cleanupJob.Stop()
	default:
		carrier = pending.NewRedisCarrier(redisClient.Client, cfg.PendingTTL())
	}

	sessions := service.NewSessionManager()

	gatewayService, err := service.NewGatewayService(cfg, carrier, sessions)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize gateway service")
	}

	registry := llm.NewRegistry(sessions, &http.Client{Timeout: cfg.ChatTimeout()})
	arenaService := service.NewArenaService(registry, cfg.ChatTimeout())

	gatewayHandler := handler.NewGatewayHandler(gatewayService, sessions)
	chatHandler := handler.NewChatHandler(registry, arenaService)

	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(redisClient.Client, config.DefaultChatRateLimitPerMin)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/gateway", func(r chi.Router) {
		r.Mount("/", gatewayHandler.Routes())
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(rateLimitMiddleware.Handler)
		r.Mount("/", chatHandler.Routes())
	})

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
