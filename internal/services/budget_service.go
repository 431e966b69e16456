package services

import (
	"context"
	"fmt"
	"time"

	"github.com/romaric67/bdget-app/internal/budget"
	"github.com/romaric67/bdget-app/internal/core"
	"github.com/romaric67/bdget-app/internal/export"
	applog "github.com/romaric67/bdget-app/internal/log"
)

// ReportSink receives a rendered report. Satisfied by *export.FileSink.
type ReportSink interface {
	Export(ctx context.Context, content string, t time.Time) (string, error)
}

// BudgetService fronts the budget form and its export operations.
type BudgetService struct {
	model     *budget.Model
	sink      ReportSink
	publisher EventPublisher
	logger    *applog.Logger
	now       func() time.Time
}

func NewBudgetService(model *budget.Model, sink ReportSink, publisher EventPublisher, logger *applog.Logger) *BudgetService {
	if logger == nil {
		logger = applog.New(applog.ComponentBudget, 0)
	}
	return &BudgetService{
		model:     model,
		sink:      sink,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// SetField stores the raw value under key and announces the change.
func (s *BudgetService) SetField(ctx context.Context, key, value string) error {
	if err := s.model.SetField(key, value); err != nil {
		return err
	}
	s.publishChange(ctx, budget.StorageKey, s.model.Revision())
	return nil
}

// Reset clears every field and announces the change.
func (s *BudgetService) Reset(ctx context.Context) {
	s.model.Reset()
	s.publishChange(ctx, budget.StorageKey, s.model.Revision())
}

func (s *BudgetService) Values() map[string]string {
	return s.model.Values()
}

func (s *BudgetService) Totals() core.BudgetTotals {
	return s.model.Totals()
}

// Report renders the delimited report from the current form state.
func (s *BudgetService) Report() string {
	values := s.model.Values()
	return export.CSVReport(values, budget.ComputeTotals(values), s.now())
}

// ShareText renders the shareable summary from the current form state.
func (s *BudgetService) ShareText() string {
	values := s.model.Values()
	return export.ShareText(values, budget.ComputeTotals(values), s.now())
}

// Export renders the report and hands it to the configured sink. The caller
// gets the destination path back.
func (s *BudgetService) Export(ctx context.Context) (string, error) {
	if s.sink == nil {
		return "", fmt.Errorf("no export sink configured")
	}
	path, err := s.sink.Export(ctx, s.Report(), s.now())
	if err != nil {
		return path, fmt.Errorf("export report: %w", err)
	}
	return path, nil
}

func (s *BudgetService) publishChange(ctx context.Context, key string, revision int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishStateChanged(ctx, key, revision); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish state change",
			applog.FieldStorageKey, key,
			applog.FieldRevision, revision,
			applog.FieldError, err)
	}
}
