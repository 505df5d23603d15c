package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"report-service/internal/auth"
	"report-service/internal/config"
	"report-service/internal/db"
	httphandler "report-service/internal/http"
	"report-service/internal/http/middleware"
	"report-service/internal/logger"
	"report-service/internal/model"
	"report-service/internal/notify"
	"report-service/internal/realtime"
	"report-service/internal/repository"
	"report-service/internal/sanitize"
	"report-service/internal/service"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func serve() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	broker, closeBroker, err := newBroker(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer closeBroker()

	var workers sync.WaitGroup
	notifier := newNotifier(ctx, cfg.SMTP, log, &workers)

	reportRepo := repository.NewReportRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)
	adminRepo := repository.NewAdminRepository(database)
	sanitizer := sanitize.New()
	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	triageService := service.NewTriageService(reportRepo, settingsRepo, broker, notifier, sanitizer, cfg.Location, log)
	services := httphandler.Services{
		Submission: service.NewSubmissionService(reportRepo, settingsRepo, broker, notifier, sanitizer, log),
		Lookup:     service.NewLookupService(reportRepo),
		Triage:     triageService,
		Auth:       service.NewAuthService(adminRepo, settingsRepo, tokenParser, cfg.Auth.AccessTTL),
		Settings:   service.NewSettingsService(settingsRepo, sanitizer),
	}

	hub := realtime.NewHub(broker, triageService.SnapshotAs(model.SystemPrincipal), log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		hub.Run(ctx)
	}()

	limiter := middleware.NewRateLimiter(cfg.Rate.PerMinute, cfg.Rate.Burst)
	defer limiter.Stop()

	health := func(ctx context.Context) error { return db.HealthCheck(ctx, database) }
	handler := httphandler.NewHandler(services, hub, health, cfg.HTTP.AllowedOrigins, log)
	router := httphandler.NewRouter(handler, tokenParser, limiter, cfg.HTTP.AllowedOrigins, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("starting report service")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped")
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	stop()
	workers.Wait()
	closeDatabase(database, log)

	log.Info().Msg("server exited")
	return nil
}

// newBroker picks redis pub/sub when configured so several instances share
// one change feed, and the in-process broker otherwise.
func newBroker(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (realtime.Broker, func(), error) {
	if !cfg.Enabled() {
		log.Info().Msg("redis not configured, using in-process change feed")
		return realtime.NewLocalBroker(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	return realtime.NewRedisBroker(client, cfg.Channel, log), func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis client")
		}
	}, nil
}

func newNotifier(ctx context.Context, cfg config.SMTPConfig, log zerolog.Logger, workers *sync.WaitGroup) notify.Notifier {
	if !cfg.Enabled() {
		log.Info().Msg("smtp not configured, notifications disabled")
		return notify.NopNotifier{}
	}

	mailer := notify.NewMailNotifier(cfg, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		mailer.Run(ctx)
	}()
	return mailer
}

func closeDatabase(database *gorm.DB, log zerolog.Logger) {
	sqlDB, err := database.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close database")
	}
}
