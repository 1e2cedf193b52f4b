package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"buzzhire/internal/config"
	"buzzhire/internal/geo"
	"buzzhire/internal/infra"
	"buzzhire/internal/repository"
	"buzzhire/internal/router"
	"buzzhire/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	resolver, err := geo.NewResolver(cfg.Branches, cfg.PunchRadiusM)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid branch configuration")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Worker pool for the punch-event audit trail. Wired here (composition
	// root) so the workers have full access to infrastructure.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handlers := &worker.Handlers{
		PunchEvent: worker.NewPunchEventWorker(repository.NewPunchEventRepository(db)),
	}
	pool := worker.StartPool(ctx, rdb, handlers, cfg.WorkerPoolSize)

	r := router.New(cfg, db, rdb, resolver)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("attendance backend listening on :%d (%d branches, radius %.0fm)",
			cfg.Port, len(cfg.Branches), cfg.PunchRadiusM)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	// Stop the workers after the HTTP server stops accepting punches.
	cancel()
	_ = pool.Wait()

	log.Info().Msg("server exited")
}
