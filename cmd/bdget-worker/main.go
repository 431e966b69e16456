package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/romaric67/bdget-app/internal/amqp"
	"github.com/romaric67/bdget-app/internal/cli"
	"github.com/romaric67/bdget-app/internal/export"
	applog "github.com/romaric67/bdget-app/internal/log"
	"github.com/romaric67/bdget-app/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentWorker)
	logger.Info("Starting bdget-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	backendResult := cli.InitBackend(logger, cfg)
	if backendResult.Cleanup != nil {
		defer func() {
			if err := backendResult.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", applog.FieldError, err)
			}
		}()
	}

	// The worker is pointless without a broker, so AMQP is required here.
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
		logger.WithComponent(applog.ComponentAMQP))
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := export.NewFileSink(cfg.ExportDir, nil, logger.WithComponent(applog.ComponentExport))
	exportWorker := worker.NewExportWorker(backendResult.Store, sink, cfg.ExportDir,
		logger.WithComponent(applog.ComponentWorker))

	// Refresh both artifacts once at startup to recover from messages
	// missed while the worker was down.
	logger.Info("Performing startup export...")
	if err := exportWorker.StartupExport(ctx); err != nil {
		logger.Error("Startup export failed", applog.FieldError, err)
		// Keep going; the consume loop will catch the next change.
	}

	go func() {
		err := amqpClient.ConsumeStateChanged(ctx, func(msg *amqp.StateChangedMessage) error {
			return exportWorker.HandleStateChange(ctx, msg)
		})
		if err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", applog.FieldError, err)
		}
		cancel()
	}()

	// Periodic refresh covers dropped messages between restarts.
	ticker := time.NewTicker(cfg.ExportInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := exportWorker.StartupExport(ctx); err != nil {
					logger.Error("Periodic export failed", applog.FieldError, err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Worker stopped gracefully")
}
