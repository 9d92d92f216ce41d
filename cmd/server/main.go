package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/wekeepgrowing/accounting-sync/internal/app"
	"github.com/wekeepgrowing/accounting-sync/internal/config"
	grpcServer "github.com/wekeepgrowing/accounting-sync/internal/infrastructure/grpc"
	httpServer "github.com/wekeepgrowing/accounting-sync/internal/infrastructure/http"
	"github.com/wekeepgrowing/accounting-sync/internal/infrastructure/poller"
	"github.com/wekeepgrowing/accounting-sync/pkg/logger"
)

const (
	shutdownTimeout = 15 * time.Second
	replayInterval  = 5 * time.Minute
	replayBatch     = 100
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.DefaultZapLogger().Fatal("Failed to load config", zap.Error(err))
	}

	zapLogger, err := logger.NewZapLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	container, err := app.Build(cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize sync engine", zap.Error(err))
	}
	defer container.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workersDone := make(chan struct{})
	go func() {
		defer close(workersDone)
		if err := container.Worker().Run(ctx); err != nil {
			zapLogger.Error("Webhook workers exited", zap.Error(err))
		}
	}()

	// Re-queues events left pending by a restart or a full queue and failures
	// due for retry. Delivery is at least once; pulls are idempotent.
	go replayLoop(ctx, container, zapLogger)

	if cfg.Poller.Enabled {
		go poller.NewQuotePoller(container.Coordinator, cfg.Poller.Interval, zapLogger).Run(ctx)
	}

	var grpcSrv *grpcServer.Server
	if cfg.Server.GRPC.Enabled {
		grpcSrv = grpcServer.NewServer(cfg, zapLogger)
		go func() {
			if err := grpcSrv.Start(); err != nil {
				zapLogger.Fatal("Failed to start gRPC server", zap.Error(err))
			}
		}()
	}

	httpSrv := httpServer.NewServer(cfg, zapLogger, container.HTTPHandlers())
	go func() {
		if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down servers...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}
	if grpcSrv != nil {
		if err := grpcSrv.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("Failed to shutdown gRPC server", zap.Error(err))
		}
	}

	cancel()
	select {
	case <-workersDone:
	case <-shutdownCtx.Done():
		zapLogger.Warn("Webhook workers did not stop in time")
	}

	zapLogger.Info("Servers shut down successfully")
}

func replayLoop(ctx context.Context, container *app.Container, log *zap.Logger) {
	ticker := time.NewTicker(replayInterval)
	defer ticker.Stop()

	for {
		if _, err := container.Dispatcher.Replay(ctx, replayBatch); err != nil && ctx.Err() == nil {
			log.Error("Webhook replay failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
