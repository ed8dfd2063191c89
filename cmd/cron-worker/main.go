package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gudangmitra/gudang-backend/internal/cron"
	"github.com/gudangmitra/gudang-backend/internal/notifications"
	"github.com/gudangmitra/gudang-backend/internal/requests"
	"github.com/gudangmitra/gudang-backend/internal/users"
	"github.com/gudangmitra/gudang-backend/pkg/config"
	"github.com/gudangmitra/gudang-backend/pkg/db"
	"github.com/gudangmitra/gudang-backend/pkg/logger"
	"github.com/gudangmitra/gudang-backend/pkg/metrics"
	"github.com/gudangmitra/gudang-backend/pkg/migrate"
	"github.com/gudangmitra/gudang-backend/pkg/redis"
)

const lockNameFormat = "cron-worker:%s"

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	var lock cron.Lock = &cron.LocalLock{}
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		lock, err = cron.NewRedisLock(redisClient, lockName(cfg.App.Env), cfg.Cron.LockTTL)
		if err != nil {
			logg.Error(context.Background(), "failed to create cron lock", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "redis disabled; using a process-local cron lock")
	}

	registry, err := buildRegistry(cfg, logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to register cron jobs", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})

	if *once {
		ran, err := service.RunOnce(ctx)
		if err != nil {
			logg.Error(ctx, "cron cycle failed", err)
			os.Exit(1)
		}
		logg.Info(logg.WithField(ctx, "ran", ran), "cron cycle finished")
		return
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}

func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (*cron.Registry, error) {
	conn := dbClient.DB()
	notificationRepo := notifications.NewRepository(conn)
	emitter, err := notifications.NewEmitter(notificationRepo)
	if err != nil {
		return nil, err
	}

	notificationSvc, err := notifications.NewService(notificationRepo)
	if err != nil {
		return nil, err
	}

	retention, err := cron.NewNotificationRetentionJob(cron.NotificationRetentionJobParams{
		Logger:        logg,
		Notifications: notificationSvc,
		Retention:     cfg.Cron.NotificationRetention,
	})
	if err != nil {
		return nil, err
	}
	reminder, err := cron.NewPendingReminderJob(cron.PendingReminderJobParams{
		Logger:        logg,
		DB:            dbClient,
		Requests:      requests.NewRepository(conn),
		Users:         users.NewRepository(conn),
		Notifications: notificationRepo,
		Emitter:       emitter,
		Age:           cfg.Cron.PendingReminderAge,
	})
	if err != nil {
		return nil, err
	}
	return cron.NewRegistry(retention, reminder)
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockNameFormat, env)
}
