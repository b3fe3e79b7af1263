package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/festy23/kurukatsu/internal/auth"
	"github.com/festy23/kurukatsu/internal/config"
	"github.com/festy23/kurukatsu/internal/database/database"
	"github.com/festy23/kurukatsu/internal/database/migrate"
	"github.com/festy23/kurukatsu/internal/events"
	"github.com/festy23/kurukatsu/internal/metrics"
	"github.com/festy23/kurukatsu/internal/notify"
	"github.com/festy23/kurukatsu/internal/server"
	"github.com/festy23/kurukatsu/pkg/retry"
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply migrations on startup")
	rootCmd.AddCommand(serveCmd)

	// serve is the default command
	rootCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply migrations on startup")
	rootCmd.RunE = runServe
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewWithConfig(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warnw("Database close failed", "error", err)
		}
	}()

	if !skipMigrate {
		if err := migrate.Migrate(db, cfg.Database); err != nil {
			return err
		}
		log.Infow("Migrations applied", "driver", cfg.Database.Driver)
	}

	m := metrics.New()
	if sqlDB, err := db.DB(); err == nil {
		m.RegisterDB(sqlDB, cfg.Database.DBName)
	}

	bus := server.NewBus(cfg.Events, m, log)

	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled() {
		redisClient, err = connectRedis(ctx, cfg.Redis, log)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()

		bridge := events.NewRedisBridge(redisClient, cfg.Redis.Channel, bus, log)
		go func() {
			if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorw("Redis bridge stopped", "error", err)
			}
		}()
	}

	dispatcher, closeDispatcher := newDispatcher(cfg.Kafka, log)
	notifier := notify.NewAsync(dispatcher, log, m)

	router := server.NewRouter(cfg, server.Deps{
		DB:       db,
		Redis:    redisClient,
		Bus:      bus,
		Notifier: notifier,
		Metrics:  m,
		Tokens:   auth.NewIssuer(cfg.Auth),
		Logger:   log,
	})
	srv := server.NewHTTPServer(cfg.Server, router)

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Infow("Shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("Server shutdown failed", "error", err)
	}
	notifier.Wait()
	if err := closeDispatcher(); err != nil {
		log.Warnw("Notification dispatcher close failed", "error", err)
	}

	log.Infow("Server stopped")
	return nil
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, log *zap.SugaredLogger) (redis.UniversalClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	retryCfg := retry.RedisConfig()
	retryCfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		log.Warnw("Redis connection attempt failed, retrying", "attempt", attempt, "delay", delay, "error", err)
	}
	if err := retry.Do(ctx, retryCfg, func() error {
		return client.Ping(ctx).Err()
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Infow("Redis connected", "addr", cfg.Addr, "channel", cfg.Channel)
	return client, nil
}

// newDispatcher picks kafka when brokers are configured and falls back to logging.
func newDispatcher(cfg config.KafkaConfig, log *zap.SugaredLogger) (notify.Dispatcher, func() error) {
	if !cfg.Enabled() {
		log.Infow("Kafka not configured, notifications are logged only")
		return notify.NewLogDispatcher(log), func() error { return nil }
	}
	dispatcher := notify.NewKafkaDispatcher(notify.NewKafkaWriter(cfg), log)
	log.Infow("Kafka notifications enabled", "brokers", cfg.Brokers, "topic", cfg.NotifyTopic)
	return dispatcher, dispatcher.Close
}
