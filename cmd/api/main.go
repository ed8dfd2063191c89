package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/gudangmitra/gudang-backend/api/routes"
	"github.com/gudangmitra/gudang-backend/internal/auth"
	"github.com/gudangmitra/gudang-backend/internal/categories"
	"github.com/gudangmitra/gudang-backend/internal/facade"
	"github.com/gudangmitra/gudang-backend/internal/identity"
	"github.com/gudangmitra/gudang-backend/internal/inventory"
	"github.com/gudangmitra/gudang-backend/internal/notifications"
	"github.com/gudangmitra/gudang-backend/internal/requests"
	"github.com/gudangmitra/gudang-backend/internal/users"
	"github.com/gudangmitra/gudang-backend/pkg/config"
	"github.com/gudangmitra/gudang-backend/pkg/db"
	"github.com/gudangmitra/gudang-backend/pkg/logger"
	"github.com/gudangmitra/gudang-backend/pkg/metrics"
	"github.com/gudangmitra/gudang-backend/pkg/migrate"
	"github.com/gudangmitra/gudang-backend/pkg/redis"
	"github.com/gudangmitra/gudang-backend/pkg/security"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	deps := routes.Deps{Config: cfg, Logger: logg, DB: dbClient}

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
		deps.Redis = redisClient
		deps.RateCounter = redisClient
	} else {
		logg.Warn(context.Background(), "redis disabled; login rate limiting is off")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps.Metrics = registry

	api, authService, err := buildServices(cfg, logg, dbClient, metrics.NewLifecycleMetrics(registry))
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}
	deps.Facade = api
	deps.Auth = authService

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
	logg.Info(ctx, "api server stopped")
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, lifecycle *metrics.LifecycleMetrics) (*facade.Facade, auth.Service, error) {
	conn := dbClient.DB()

	legacy, err := identity.ParseLegacyMap(cfg.Identity.LegacyMap)
	if err != nil {
		return nil, nil, err
	}
	reconciler, err := identity.NewReconciler(identity.NewRepository(conn), legacy, logg)
	if err != nil {
		return nil, nil, err
	}

	inventoryService, err := inventory.NewService(inventory.NewRepository(conn), dbClient, logg, lifecycle)
	if err != nil {
		return nil, nil, err
	}
	categoryService, err := categories.NewService(categories.NewRepository(conn), dbClient)
	if err != nil {
		return nil, nil, err
	}
	hasher := security.NewHasher(cfg.Password)
	userRepo := users.NewRepository(conn)
	userService, err := users.NewService(userRepo, dbClient, hasher)
	if err != nil {
		return nil, nil, err
	}

	notificationRepo := notifications.NewRepository(conn)
	emitter, err := notifications.NewEmitter(notificationRepo)
	if err != nil {
		return nil, nil, err
	}
	notificationService, err := notifications.NewService(notificationRepo)
	if err != nil {
		return nil, nil, err
	}

	manager, err := requests.NewManager(requests.ManagerParams{
		Repo:      requests.NewRepository(conn),
		Tx:        dbClient,
		Inventory: inventoryService,
		Emitter:   emitter,
		Logger:    logg,
		Metrics:   lifecycle,
	})
	if err != nil {
		return nil, nil, err
	}

	api, err := facade.New(facade.Params{
		IDs:           reconciler,
		Requests:      manager,
		Inventory:     inventoryService,
		Categories:    categoryService,
		Users:         userService,
		Notifications: notificationService,
	})
	if err != nil {
		return nil, nil, err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:     userRepo,
		Users:        userService,
		Hasher:       hasher,
		JWTConfig:    cfg.JWT,
		OpenRegister: cfg.FeatureFlags.OpenRegister,
		Logger:       logg,
	})
	if err != nil {
		return nil, nil, err
	}
	return api, authService, nil
}
