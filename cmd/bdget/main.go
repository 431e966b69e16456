package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/romaric67/bdget-app/internal/amqp"
	"github.com/romaric67/bdget-app/internal/budget"
	"github.com/romaric67/bdget-app/internal/cli"
	"github.com/romaric67/bdget-app/internal/export"
	apphttp "github.com/romaric67/bdget-app/internal/http"
	"github.com/romaric67/bdget-app/internal/ledger"
	applog "github.com/romaric67/bdget-app/internal/log"
	"github.com/romaric67/bdget-app/internal/persist"
	"github.com/romaric67/bdget-app/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	backendResult := cli.InitBackend(logger, cfg)
	if backendResult.Cleanup != nil {
		defer func() {
			if err := backendResult.Cleanup(); err != nil {
				logger.Error("Backend cleanup failed", applog.FieldError, err)
			}
		}()
	}
	store := backendResult.Store

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// AMQP is optional: without it the app runs, it just stops announcing
	// state changes to the worker.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
			logger.WithComponent(applog.ComponentAMQP))
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events",
				applog.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	persister := persist.New(store, logger.WithComponent(applog.ComponentPersist))

	// Snapshots load here, before the server accepts any request, so no
	// mutation can race the restore.
	ledgerStore := ledger.Open(ctx, store, persister, logger.WithComponent(applog.ComponentLedger))
	budgetModel := budget.Open(ctx, store, persister, logger.WithComponent(applog.ComponentBudget))

	sink := export.NewFileSink(cfg.ExportDir, nil, logger.WithComponent(applog.ComponentExport))

	ledgerSvc := services.NewLedgerService(ledgerStore, publisher, logger.WithComponent(applog.ComponentLedger))
	budgetSvc := services.NewBudgetService(budgetModel, sink, publisher, logger.WithComponent(applog.ComponentBudget))

	srv := apphttp.NewServer(":"+cfg.Port, ledgerSvc, budgetSvc, logger.WithComponent(applog.ComponentHTTP))
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := persister.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case status := <-persister.Status():
				if status.Err != nil {
					logger.Warn("Snapshot persist failed",
						applog.FieldStorageKey, status.Key,
						applog.FieldError, status.Err)
				}
			}
		}
	})

	g.Go(func() error {
		logger.Info("Starting bdget server",
			"port", cfg.Port, "backend", cfg.DataBackend, "export_dir", cfg.ExportDir)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
