// Package app собирает сервис магазина: хранилище, workflow, HTTP API, outbox и служебные серверы.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shop/internal/auth"
	"github.com/vladislavdragonenkov/shop/internal/health"
	"github.com/vladislavdragonenkov/shop/internal/metrics"
	"github.com/vladislavdragonenkov/shop/internal/service/account"
	"github.com/vladislavdragonenkov/shop/internal/service/checkout"
	"github.com/vladislavdragonenkov/shop/internal/service/outbox"
	"github.com/vladislavdragonenkov/shop/internal/service/review"
	"github.com/vladislavdragonenkov/shop/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/shop/internal/version"
)

// Run запускает сервис и блокируется до отмены ctx или падения HTTP API.
// При отмене ctx возвращает ctx.Err().
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		logger.Warn("SHOP_JWT_SECRET is not set, using development secret")
	}

	deps, err := initRuntimeDependencies(ctx, cfg, logger.WithField("layer", "storage"))
	if err != nil {
		return err
	}
	defer deps.close(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	shopMetrics := metrics.NewShopMetricsWithRegisterer(registry)

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	tokens, err := auth.NewTokenIssuer(cfg.jwtSecret(), cfg.JWTTTL)
	if err != nil {
		return err
	}
	authenticator, err := auth.NewAuthenticator(deps.store, hasher, tokens, logger.WithField("layer", "auth"))
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router, err := httpapi.NewRouter(httpapi.Deps{
		Auth:     authenticator,
		Accounts: account.NewService(deps.store, hasher, shopMetrics, logger.WithField("layer", "account")),
		Orders:   checkout.NewService(deps.store, shopMetrics, logger.WithField("layer", "checkout")),
		Reviews:  review.NewService(deps.store, shopMetrics, logger.WithField("layer", "review")),
		Metrics:  metrics.NewHTTPMetrics(registry),
		Logger:   logger.WithField("layer", "http"),
	})
	if err != nil {
		return err
	}

	publisher, dlq, producer := outboxPublishers(cfg, logger.WithField("layer", "kafka"))
	defer closeKafka(producer, logger)

	workerOptions := []outbox.Option{
		outbox.WithLogger(logger.WithField("layer", "outbox")),
		outbox.WithMetrics(metrics.NewOutboxMetrics(registry)),
	}
	if dlq != nil {
		workerOptions = append(workerOptions, outbox.WithDLQPublisher(dlq))
	}
	worker := outbox.NewWorker(deps.store, publisher, outbox.Config{
		PollInterval:   cfg.OutboxPollInterval,
		BatchSize:      cfg.OutboxBatchSize,
		MaxAttempts:    cfg.OutboxMaxAttempts,
		RetryBaseDelay: cfg.OutboxRetryDelay,
	}, workerOptions...)
	cleanup := outbox.NewCleanupWorker(deps.store,
		outbox.WithCleanupLogger(logger.WithField("layer", "outbox-cleanup")),
		outbox.WithCleanupMetrics(metrics.NewOutboxCleanupMetrics(registry)),
		outbox.WithCleanupInterval(cfg.OutboxCleanupInterval),
		outbox.WithRetention(cfg.OutboxRetention),
	)
	workerCtx, cancelWorker := context.WithCancel(ctx)
	workerDone := make(chan struct{}, 2)
	go func() {
		defer func() { workerDone <- struct{}{} }()
		worker.Run(workerCtx)
	}()
	go func() {
		defer func() { workerDone <- struct{}{} }()
		cleanup.Run(workerCtx)
	}()
	defer func() {
		cancelWorker()
		<-workerDone
		<-workerDone
	}()

	healthHandler := health.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("storage", deps.storageChecker)
	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, registry, healthHandler, logger)
	defer shutdownHTTP(metricsSrv, cfg.shutdownTimeout(), logger)

	if cfg.GRPCHealthAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCHealthAddr)
		if err != nil {
			return fmt.Errorf("listen grpc health: %w", err)
		}
		grpcHealth := newGRPCHealthServer(registry, logger)
		grpcHealth.serve(lis, logger)
		defer grpcHealth.stop(cfg.shutdownTimeout(), logger)
	}

	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen http: %w", err)
	}
	apiSrv := &http.Server{Handler: router, ReadHeaderTimeout: readHeaderTimeout}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", lis.Addr())
		errCh <- apiSrv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP API")
		shutdownHTTP(apiSrv, cfg.shutdownTimeout(), logger)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
