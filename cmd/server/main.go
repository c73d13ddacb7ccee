package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/boring-ventures/billar-sub000/internal/config"
	"github.com/boring-ventures/billar-sub000/internal/infra"
	"github.com/boring-ventures/billar-sub000/internal/repository"
	"github.com/boring-ventures/billar-sub000/internal/router"
	"github.com/boring-ventures/billar-sub000/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev pretty, prod JSON
	zerolog.TimeFieldFormat = time.RFC3339
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	repository.SetReadAttempts(cfg.DBReadRetries)

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = infra.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
	} else {
		log.Warn().Msg("REDIS_URL not set: stock feed and low-stock alerts disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Low-stock alert workers are wired here (composition root) so that the
	// pool has the mailer and the user repository at hand.
	mailer := infra.NewMailer(cfg)
	if rdb != nil {
		handlers := &worker.WorkerHandlers{
			LowStock: worker.NewLowStockWorker(mailer, repository.NewUserRepository(db)),
		}
		worker.StartWorkerPool(ctx, rdb, handlers, cfg.WorkerPoolSize)
	}

	r := router.New(ctx, cfg, db, rdb, mailer.Breaker())

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: the SSE stock feed holds responses open.
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("billar backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("server exited")
}
