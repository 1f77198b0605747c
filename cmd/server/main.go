package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/pagecomposer/api/handler"
	"github.com/fastygo/pagecomposer/internal/config"
	"github.com/fastygo/pagecomposer/internal/infrastructure/buffer"
	"github.com/fastygo/pagecomposer/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/pagecomposer/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/pagecomposer/internal/infrastructure/redis"
	"github.com/fastygo/pagecomposer/internal/middleware"
	"github.com/fastygo/pagecomposer/internal/router"
	"github.com/fastygo/pagecomposer/internal/services"
	"github.com/fastygo/pagecomposer/internal/services/lifecycle"
	"github.com/fastygo/pagecomposer/pkg/httpcontext"
	"github.com/fastygo/pagecomposer/pkg/logger"
	"github.com/fastygo/pagecomposer/pkg/notify"
	"github.com/fastygo/pagecomposer/repository/postgres"
	redisRepo "github.com/fastygo/pagecomposer/repository/redis"
	editorUC "github.com/fastygo/pagecomposer/usecase/editor"
	pageUC "github.com/fastygo/pagecomposer/usecase/page"
	"github.com/fastygo/pagecomposer/usecase/preview"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		Service:  cfg.AppName,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pgInfra.Close(pool, zapLogger)
		return nil
	})

	redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	outboxStore, err := buffer.Open(cfg.Outbox.Path, cfg.Outbox.Bucket)
	if err != nil {
		zapLogger.Fatal("failed to open outbox store", zap.Error(err))
	}
	manager.Register("outbox_store", func(ctx context.Context) error {
		return outboxStore.Close()
	})

	mon := monitor.New(pool, redisClient, outboxStore, cfg.Monitor.Interval, zapLogger)
	manager.Start("monitor", mon.Start, func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	pageRepo := postgres.NewPageRepository(pool)
	gateway := postgres.NewComponentGateway(pool)
	draftRepo := redisRepo.NewDraftRepository(redisClient, cfg.Editor.DraftTTL)

	outboxProcessor := services.NewOutboxProcessor(
		outboxStore,
		mon,
		gateway,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Outbox.SyncInterval,
			BatchSize:  cfg.Outbox.BatchSize,
			MaxRetries: cfg.Outbox.MaxRetry,
			Retention:  cfg.OutboxRetention(),
		},
	)
	manager.Start("outbox_processor", outboxProcessor.Start, func(ctx context.Context) error {
		outboxProcessor.Stop(ctx)
		return nil
	})

	bus := notify.NewBus()
	inbox := notify.NewInbox(cfg.Editor.NotifyInboxSize)
	detachInbox := inbox.Attach(bus)
	detachLog := bus.Subscribe(notify.LogHandler(zapLogger))
	manager.Register("notifications", func(ctx context.Context) error {
		detachLog()
		detachInbox()
		return nil
	})
	if err := manager.Every("notification_prune", time.Minute, func(context.Context) {
		if removed := inbox.Prune(time.Now().Add(-cfg.Editor.DraftTTL)); removed > 0 {
			zapLogger.Debug("idle notification queues dropped", zap.Int("count", removed))
		}
	}); err != nil {
		zapLogger.Fatal("failed to schedule notification prune", zap.Error(err))
	}

	registry := preview.NewDefaultRegistry(zapLogger)

	editorUseCase := editorUC.New(pageRepo, gateway, draftRepo, services.NewOutboxBridge(outboxStore), registry, bus, zapLogger)
	pageUseCase := pageUC.New(pageRepo, registry, cfg.Editor.PreviewCSSURL, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Page:   apiHandler.NewPageHandler(pageUseCase, ctxAdapter, zapLogger),
		Editor: apiHandler.NewEditorHandler(editorUseCase, inbox, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, cfg.JWT.Issuer, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
