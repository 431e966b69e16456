// Package services orchestrates the in-memory stores with the messaging
// layer. Mutations commit locally first; event publishing is best-effort and
// never fails the caller's request.
package services

import (
	"context"

	"github.com/romaric67/bdget-app/internal/core"
	"github.com/romaric67/bdget-app/internal/ledger"
	applog "github.com/romaric67/bdget-app/internal/log"
)

// EventPublisher announces that a persisted snapshot changed. Satisfied by
// *amqp.Client; nil disables publishing.
type EventPublisher interface {
	PublishStateChanged(ctx context.Context, key string, revision int64) error
}

// LedgerService fronts the transaction ledger for the HTTP layer.
type LedgerService struct {
	store     *ledger.Store
	publisher EventPublisher
	logger    *applog.Logger
}

func NewLedgerService(store *ledger.Store, publisher EventPublisher, logger *applog.Logger) *LedgerService {
	if logger == nil {
		logger = applog.New(applog.ComponentLedger, 0)
	}
	return &LedgerService{store: store, publisher: publisher, logger: logger}
}

// AddTransaction validates in at the boundary, commits it to the ledger, and
// announces the change. The transaction stands even if publishing fails.
func (s *LedgerService) AddTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	if err := in.Validate(); err != nil {
		return core.Transaction{}, err
	}
	txn := s.store.Add(in)
	s.publishChange(ctx, ledger.StorageKey, s.store.Revision())
	return txn, nil
}

// DeleteTransaction removes the transaction with the given id. Unknown ids
// are tolerated; the change event fires either way.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) {
	s.store.Remove(id)
	s.publishChange(ctx, ledger.StorageKey, s.store.Revision())
}

func (s *LedgerService) Transactions() []core.Transaction {
	return s.store.Transactions()
}

func (s *LedgerService) Categories() []string {
	return s.store.Categories()
}

func (s *LedgerService) Summary() core.LedgerSummary {
	return s.store.Summary()
}

func (s *LedgerService) publishChange(ctx context.Context, key string, revision int64) {
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
