package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/ordercore/api/handler"
	"github.com/fastygo/ordercore/internal/config"
	"github.com/fastygo/ordercore/internal/infrastructure/docstore"
	"github.com/fastygo/ordercore/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/ordercore/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/ordercore/internal/infrastructure/redis"
	"github.com/fastygo/ordercore/internal/middleware"
	"github.com/fastygo/ordercore/internal/router"
	"github.com/fastygo/ordercore/internal/services"
	"github.com/fastygo/ordercore/internal/services/lifecycle"
	"github.com/fastygo/ordercore/pkg/httpcontext"
	"github.com/fastygo/ordercore/pkg/logger"
	"github.com/fastygo/ordercore/repository/document"
	redisRepo "github.com/fastygo/ordercore/repository/redis"
	"github.com/fastygo/ordercore/usecase"
	authUC "github.com/fastygo/ordercore/usecase/auth"
	customerUC "github.com/fastygo/ordercore/usecase/customer"
	orderUC "github.com/fastygo/ordercore/usecase/order"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	driver, pinger := openDocstore(appCtx, cfg, manager, zapLogger)

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	mon := monitor.New(pinger, redisClient, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	orderRepo := document.NewOrderRepository(driver)
	customerRepo := document.NewCustomerRepository(driver)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, 24*time.Hour)

	registry := usecase.NewEventRegistry()
	notifier := services.NewNotifier(redisClient, cfg.Redis.EventChannel, zapLogger)
	notifier.Subscribe(registry)

	dispatcher := usecase.NewDispatcher(
		usecase.EventDispatch(registry, usecase.DispatchPolicy{RetryAttempts: cfg.Dispatch.RetryAttempts}, zapLogger),
	)
	orderUC.New(orderRepo, customerRepo, zapLogger).Register(dispatcher)
	customerUC.New(customerRepo, zapLogger).Register(dispatcher)

	authUseCase := authUC.New(customerRepo, sessionRepo, zapLogger)

	if cfg.Retention.Enabled {
		sweeper := services.NewRetentionSweeper(orderRepo, cfg.Retention.MaxAge, cfg.Retention.Interval, zapLogger)
		if err := sweeper.Start(); err != nil {
			zapLogger.Fatal("retention sweeper failed to start", zap.Error(err))
		}
		manager.Register("retention_sweeper", func(ctx context.Context) error {
			sweeper.Stop(ctx)
			return nil
		})
	}

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger, cfg.JWT.Secret, cfg.JWT.Issuer, time.Hour),
		Customer: apiHandler.NewCustomerHandler(dispatcher, ctxAdapter, zapLogger),
		Order:    apiHandler.NewOrderHandler(dispatcher, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}

// openDocstore selects and opens the configured document-store backend. The
// second return value feeds the health monitor; the in-memory backend has no
// liveness to report.
func openDocstore(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, zapLogger *zap.Logger) (docstore.Driver, monitor.Pinger) {
	switch cfg.Docstore.Backend {
	case "postgres":
		if cfg.Migrations.Enabled {
			if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
				zapLogger.Fatal("migrations failed", zap.Error(err))
			}
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(ctx context.Context) error {
			pool.Close()
			return nil
		})
		store := docstore.NewPostgres(pool)
		return store, store

	case "memory":
		zapLogger.Warn("using in-memory docstore, data will not survive restarts")
		return docstore.NewMemory(), nil

	default:
		store, err := docstore.OpenBolt(cfg.Docstore.Path)
		if err != nil {
			zapLogger.Fatal("failed to open bolt docstore", zap.Error(err))
		}
		manager.Register("bolt", func(ctx context.Context) error {
			return store.Close()
		})
		return store, store
	}
}
