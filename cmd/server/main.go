// @title           Back Office API
// @version         1.0
// @description     Inventory costing, sales, bank ledger and owner drawings for a single shop.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backoffice/internal/config"
	"backoffice/internal/infra"
	"backoffice/internal/router"
	"backoffice/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: pretty in development, JSON in production
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Worker handlers are wired here, at the composition root. Services only
	// see the dispatcher.
	mailer := infra.NewMailer(cfg)
	if !mailer.Configured() {
		log.Warn().Msg("SMTP_HOST not set: notification emails will be dropped")
	}
	dispatcher := worker.NewDispatcher(rdb)
	worker.StartWorkerPool(ctx, rdb, map[string]worker.JobHandler{
		worker.JobEmail: worker.NewEmailWorker(mailer),
	}, cfg.WorkerPoolSize)

	svc, err := router.NewServices(cfg, db, rdb, dispatcher)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if created, err := svc.Auth.EnsureDefaultUser(ctx, cfg.DefaultAdminUsername, cfg.DefaultAdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to seed default owner")
	} else if created {
		log.Warn().Str("username", cfg.DefaultAdminUsername).Msg("default owner created; change its password")
	}

	if cfg.SummaryCron != "" && cfg.NotifyEmail != "" {
		sched, err := worker.NewScheduler(cfg.SummaryCron, svc.Reports, dispatcher, cfg.NotifyEmail)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid SUMMARY_CRON")
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router.New(cfg, db, rdb, svc),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("back office listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	cancel()
	log.Info().Msg("server exited")
}
