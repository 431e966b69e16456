// Package worker consumes state-change notifications and refreshes the
// on-disk artifacts derived from the persisted snapshots: the budget report
// and the transaction backup. Deliveries carry no payload, so each one
// triggers a fresh read of the snapshot it names.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/romaric67/bdget-app/internal/amqp"
	"github.com/romaric67/bdget-app/internal/budget"
	"github.com/romaric67/bdget-app/internal/core"
	"github.com/romaric67/bdget-app/internal/export"
	"github.com/romaric67/bdget-app/internal/kv"
	"github.com/romaric67/bdget-app/internal/ledger"
	applog "github.com/romaric67/bdget-app/internal/log"
)

const backupFilename = "transactions_backup.json"

// ReportSink receives a rendered budget report.
type ReportSink interface {
	Export(ctx context.Context, content string, t time.Time) (string, error)
}

// ExportWorker turns persisted snapshots into files under exportDir.
type ExportWorker struct {
	store     kv.Store
	sink      ReportSink
	exportDir string
	logger    *applog.Logger
	now       func() time.Time
}

func NewExportWorker(store kv.Store, sink ReportSink, exportDir string, logger *applog.Logger) *ExportWorker {
	if logger == nil {
		logger = applog.New(applog.ComponentWorker, 0)
	}
	return &ExportWorker{
		store:     store,
		sink:      sink,
		exportDir: exportDir,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleStateChange refreshes the artifact derived from the snapshot the
// message names. Unknown keys are logged and dropped rather than requeued;
// redelivery would not make them known.
func (w *ExportWorker) HandleStateChange(ctx context.Context, msg *amqp.StateChangedMessage) error {
	w.logger.InfoContext(ctx, "Processing state change",
		applog.FieldStorageKey, msg.Key,
		applog.FieldRevision, msg.Revision)

	switch msg.Key {
	case budget.StorageKey:
		return w.ExportBudgetReport(ctx)
	case ledger.StorageKey:
		return w.BackupTransactions(ctx)
	default:
		w.logger.WarnContext(ctx, "Ignoring state change for unknown key",
			applog.FieldStorageKey, msg.Key)
		return nil
	}
}

// ExportBudgetReport renders the delimited report from the persisted budget
// snapshot. A missing snapshot means there is nothing to export yet.
func (w *ExportWorker) ExportBudgetReport(ctx context.Context) error {
	raw, ok, err := w.store.Get(ctx, budget.StorageKey)
	if err != nil {
		return fmt.Errorf("read budget snapshot: %w", err)
	}
	if !ok || raw == "" {
		w.logger.DebugContext(ctx, "No budget snapshot to export")
		return nil
	}

	var values map[string]string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		// A corrupt snapshot will not fix itself on redelivery.
		w.logger.ErrorContext(ctx, "Budget snapshot unparseable, skipping export",
			applog.FieldError, err)
		return nil
	}

	path, err := w.sink.Export(ctx, export.BudgetReport(values, w.now()), w.now())
	if err != nil {
		return fmt.Errorf("export budget report: %w", err)
	}
	w.logger.InfoContext(ctx, "Budget report refreshed", applog.FieldExportPath, path)
	return nil
}

// BackupTransactions mirrors the persisted transaction list to a JSON file.
func (w *ExportWorker) BackupTransactions(ctx context.Context) error {
	raw, ok, err := w.store.Get(ctx, ledger.StorageKey)
	if err != nil {
		return fmt.Errorf("read ledger snapshot: %w", err)
	}
	if !ok || raw == "" {
		w.logger.DebugContext(ctx, "No ledger snapshot to back up")
		return nil
	}

	var txns []core.Transaction
	if err := json.Unmarshal([]byte(raw), &txns); err != nil {
		w.logger.ErrorContext(ctx, "Ledger snapshot unparseable, skipping backup",
			applog.FieldError, err)
		return nil
	}
	body, err := json.MarshalIndent(txns, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backup: %w", err)
	}

	if err := os.MkdirAll(w.exportDir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(w.exportDir, backupFilename)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}

	w.logger.InfoContext(ctx, "Transaction backup refreshed",
		applog.FieldExportPath, path, "transactions", len(txns))
	return nil
}

// StartupExport refreshes both artifacts once, recovering from messages
// missed while the worker was down.
func (w *ExportWorker) StartupExport(ctx context.Context) error {
	if err := w.ExportBudgetReport(ctx); err != nil {
		return err
	}
	return w.BackupTransactions(ctx)
}
