package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnknownOlympus/storekeeper/internal/bot"
	"github.com/UnknownOlympus/storekeeper/internal/config"
	"github.com/UnknownOlympus/storekeeper/internal/i18n"
	"github.com/UnknownOlympus/storekeeper/internal/metrics"
	"github.com/UnknownOlympus/storekeeper/internal/notify"
	"github.com/UnknownOlympus/storekeeper/internal/repository"
	"github.com/UnknownOlympus/storekeeper/internal/server"
	"github.com/UnknownOlympus/storekeeper/internal/session"
	"github.com/UnknownOlympus/storekeeper/internal/warehouse"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// Constants for different environment types.
const (
	envLocal    = "local"
	envDev      = "development"
	envProd     = "production"
	stopWait    = 10 * time.Second
	redisWait   = 5 * time.Second
	seedWait    = 5 * time.Second
	migrateWait = 30 * time.Second
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop() // Ensure stop is called to release resources related to signal handling.

	// Load application configuration. A missing bot token panics here.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Initialize the database connection and make sure the schema exists.
	dtb, err := repository.NewDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	repo := repository.NewRepository(dtb)
	migrateCtx, cancelMigrate := context.WithTimeout(ctx, migrateWait)
	err = repo.Migrate(migrateCtx)
	cancelMigrate()
	if err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	// Sessions live in Redis when configured, otherwise in process memory.
	var (
		sessions    session.Store = session.NewMemoryStore()
		redisPinger server.Pinger
	)
	if cfg.RedisAddr != "" {
		redisClient, errRedis := newRedisClient(ctx, cfg.RedisAddr)
		if errRedis != nil {
			log.Fatalf("Failed to connect to Redis: %v", errRedis)
		}
		defer redisClient.Close()

		sessions = session.NewRedisStore(redisClient, logger)
		redisPinger = server.RedisPinger{Client: redisClient}
	}

	localizer, err := i18n.NewLocalizer(cfg.Language)
	if err != nil {
		log.Fatalf("Failed to initialize localizer: %v", err)
	}

	// Initialize the bot with logger, metrics, token, and poller timeout.
	storeBot, err := bot.NewBot(logger, appMetrics, cfg.Token, cfg.PollerTimeout)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	notifier := notify.New(storeBot.API(), localizer, cfg.NotifyConcurrency, logger, appMetrics)
	service := warehouse.NewService(repo, notifier, logger, appMetrics, cfg.Language)

	seedCtx, cancelSeed := context.WithTimeout(ctx, seedWait)
	if err = service.SeedSuperAdmin(seedCtx, cfg.SuperAdminID); err != nil {
		logger.ErrorContext(ctx, "Failed to seed super admin", "error", err)
	}
	cancelSeed()

	storeBot.Route(bot.NewDialogue(service, sessions, localizer, logger, appMetrics, cfg.Language))

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Start the bot in a goroutine to allow main to listen for signals.
	go storeBot.Start()

	// Start the monitoring server
	checker := server.NewHealthChecker(logger, dtb, redisPinger)
	alerts := server.NewAlertHandler(logger, service, notifier)
	go server.StartMonitoringServer(ctx, logger, reg, checker, cfg.MonitoringPort, alerts)

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	// Stop the bot gracefully, letting queued updates finish.
	stopCtx, cancelStop := context.WithTimeout(context.Background(), stopWait)
	defer cancelStop()
	if err = storeBot.Stop(stopCtx); err != nil {
		logger.ErrorContext(stopCtx, "Bot did not drain in time", "error", err)
	}

	// Log graceful shutdown completion.
	logger.InfoContext(stopCtx, "Application stopped gracefully.")
}

// newRedisClient connects to Redis and checks it answers.
func newRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		DialTimeout: redisWait,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisWait)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	return client, nil
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified	 or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
