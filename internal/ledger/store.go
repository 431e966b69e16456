// Package ledger implements the transaction ledger: an ordered, in-memory
// sequence of income/expense records mirrored to the key-value store after
// every mutation. The in-memory state stays authoritative for the session;
// storage failures never roll a mutation back.
package ledger

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/romaric67/bdget-app/internal/core"
	"github.com/romaric67/bdget-app/internal/kv"
	applog "github.com/romaric67/bdget-app/internal/log"
)

// StorageKey is the fixed key the full transaction list is persisted under.
const StorageKey = "transactions"

// DefaultCategories is the fixed, ordered category list shown to the user.
// It is not persisted and not user-extensible; Add still accepts categories
// outside this list.
var DefaultCategories = []string{
	"Alimentation", "Transport", "Logement", "Loisirs", "Santé", "Autre",
}

// Persister schedules a full-state snapshot write. Satisfied by
// *persist.Persister.
type Persister interface {
	Enqueue(key, payload string)
}

// Store owns the transaction sequence. One instance per application,
// constructed in main and passed by handle.
type Store struct {
	mu           sync.Mutex
	transactions []core.Transaction
	categories   []string
	persister    Persister
	logger       *applog.Logger
	revision     int64
}

// Open restores the ledger from the key-value store and returns it ready
// for use. The load happens here, synchronously, so no mutation can race
// it. A missing, unreadable, or unparseable snapshot yields an empty
// ledger; the failure is logged and not surfaced.
func Open(ctx context.Context, store kv.Store, p Persister, logger *applog.Logger) *Store {
	if logger == nil {
		logger = applog.New(applog.ComponentLedger, 0)
	}
	s := &Store{
		categories: append([]string(nil), DefaultCategories...),
		persister:  p,
		logger:     logger,
	}

	raw, ok, err := store.Get(ctx, StorageKey)
	if err != nil {
		logger.WarnContext(ctx, "Ledger snapshot read failed, starting empty",
			applog.FieldStorageKey, StorageKey, applog.FieldError, err)
		return s
	}
	if !ok || raw == "" {
		return s
	}
	var txns []core.Transaction
	if err := json.Unmarshal([]byte(raw), &txns); err != nil {
		logger.WarnContext(ctx, "Ledger snapshot unparseable, starting empty",
			applog.FieldStorageKey, StorageKey, applog.FieldError, err)
		return s
	}
	s.transactions = txns
	logger.InfoContext(ctx, "Ledger restored", "transactions", len(txns))
	return s
}

// Add appends a transaction built from in, stamping a fresh id and the
// current time, and schedules a full-state persist. Input validation is the
// caller's job (the form boundary); Add itself never rejects.
func (s *Store) Add(in core.TransactionInput) core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn := core.Transaction{
		ID:          uuid.NewString(),
		Amount:      in.Amount,
		Category:    in.Category,
		Type:        in.Type,
		Description: in.Description,
		Date:        time.Now().UTC(),
	}
	s.transactions = append(s.transactions, txn)
	s.revision++
	s.persistLocked()

	s.logger.Info("Transaction added",
		applog.FieldTransactionID, txn.ID,
		applog.FieldAmount, txn.Amount,
		applog.FieldCategory, txn.Category,
		"type", string(txn.Type))
	return txn
}

// Remove drops the transaction with the given id. Removing an unknown id is
// a no-op, not an error; a persist is scheduled either way.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.transactions[:0]
	for _, txn := range s.transactions {
		if txn.ID != id {
			kept = append(kept, txn)
		}
	}
	s.transactions = kept
	s.revision++
	s.persistLocked()
}

// Transactions returns a copy of the ordered sequence.
func (s *Store) Transactions() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// Categories returns a copy of the fixed category list.
func (s *Store) Categories() []string {
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

// Balance is the signed sum: income minus expenses.
func (s *Store) Balance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, txn := range s.transactions {
		if txn.Type == core.Income {
			total += txn.Amount
		} else {
			total -= txn.Amount
		}
	}
	return total
}

// TotalIncome sums all income transactions.
func (s *Store) TotalIncome() float64 {
	return s.sumByType(core.Income)
}

// TotalExpenses sums all expense transactions.
func (s *Store) TotalExpenses() float64 {
	return s.sumByType(core.Expense)
}

func (s *Store) sumByType(t core.TransactionType) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, txn := range s.transactions {
		if txn.Type == t {
			total += txn.Amount
		}
	}
	return total
}

// Summary recomputes all derived totals in one pass.
func (s *Store) Summary() core.LedgerSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum core.LedgerSummary
	for _, txn := range s.transactions {
		if txn.Type == core.Income {
			sum.TotalIncome += txn.Amount
		} else {
			sum.TotalExpenses += txn.Amount
		}
	}
	sum.Balance = sum.TotalIncome - sum.TotalExpenses
	sum.Count = len(s.transactions)
	return sum
}

// Revision increments on every mutation. Used to tag change events.
func (s *Store) Revision() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

func (s *Store) persistLocked() {
	if s.persister == nil {
		return
	}
	payload, err := json.Marshal(s.transactions)
	if err != nil {
		s.logger.Error("Ledger snapshot marshal failed", applog.FieldError, err)
		return
	}
	s.persister.Enqueue(StorageKey, string(payload))
}
