// Package budget implements the monthly budget form: a fixed set of named
// numeric-string fields whose derived totals are recomputed on every change
// and whose full mapping is mirrored to the key-value store.
package budget

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/romaric67/bdget-app/internal/core"
	"github.com/romaric67/bdget-app/internal/kv"
	applog "github.com/romaric67/bdget-app/internal/log"
)

// StorageKey is the fixed key the field mapping is persisted under.
const StorageKey = "budgetData"

// Keys is the closed field set, in form order. The mapping never grows or
// shrinks; only values change.
var Keys = []string{
	"salary", "otherIncome",
	"rent", "utilities", "internet", "insurance", "transport",
	"food", "clothing", "entertainment", "health", "otherExpenses",
	"emergency", "projects", "investments",
}

var incomeKeys = map[string]bool{
	"salary":      true,
	"otherIncome": true,
}

var ErrUnknownField = errors.New("unknown budget field")

// Persister schedules a full-state snapshot write.
type Persister interface {
	Enqueue(key, payload string)
}

// Model owns the field mapping. One instance per application.
type Model struct {
	mu        sync.Mutex
	values    map[string]string
	persister Persister
	logger    *applog.Logger
	revision  int64
}

// Open restores the budget form from the key-value store, synchronously, so
// no edit can race the load. Missing or unparseable snapshots yield the
// default all-empty form.
func Open(ctx context.Context, store kv.Store, p Persister, logger *applog.Logger) *Model {
	if logger == nil {
		logger = applog.New(applog.ComponentBudget, 0)
	}
	m := &Model{
		values:    emptyValues(),
		persister: p,
		logger:    logger,
	}

	raw, ok, err := store.Get(ctx, StorageKey)
	if err != nil {
		logger.WarnContext(ctx, "Budget snapshot read failed, starting empty",
			applog.FieldStorageKey, StorageKey, applog.FieldError, err)
		return m
	}
	if !ok || raw == "" {
		return m
	}
	var saved map[string]string
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		logger.WarnContext(ctx, "Budget snapshot unparseable, starting empty",
			applog.FieldStorageKey, StorageKey, applog.FieldError, err)
		return m
	}
	// Only known keys are restored; the key set is fixed at compile time.
	for _, key := range Keys {
		if v, ok := saved[key]; ok {
			m.values[key] = v
		}
	}
	logger.InfoContext(ctx, "Budget restored")
	return m
}

// SetField replaces the stored string for key. The value is not validated:
// non-numeric strings are tolerated and count as zero in the totals. Unknown
// keys are rejected because the field set is closed.
func (m *Model) SetField(key, value string) error {
	if !knownKey(key) {
		return ErrUnknownField
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	m.revision++
	m.persistLocked()
	return nil
}

// Field returns the stored string for key.
func (m *Model) Field(key string) (string, error) {
	if !knownKey(key) {
		return "", ErrUnknownField
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

// Values returns a copy of the full mapping.
func (m *Model) Values() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Totals recomputes the three derived totals from the current values.
func (m *Model) Totals() core.BudgetTotals {
	return ComputeTotals(m.Values())
}

// Reset sets every field back to the empty string and schedules a persist.
func (m *Model) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = emptyValues()
	m.revision++
	m.persistLocked()
	m.logger.Info("Budget reset")
}

// Revision increments on every mutation. Used to tag change events.
func (m *Model) Revision() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revision
}

// ComputeTotals derives the totals from a raw field mapping. Income is the
// two income-designated fields; every other field, savings included, counts
// as an expense. Exported so the worker can recompute totals from a
// persisted snapshot without a Model.
func ComputeTotals(values map[string]string) core.BudgetTotals {
	var t core.BudgetTotals
	for _, key := range Keys {
		n := ParseNumber(values[key])
		if incomeKeys[key] {
			t.TotalIncome += n
		} else {
			t.TotalExpenses += n
		}
	}
	t.Remaining = t.TotalIncome - t.TotalExpenses
	return t
}

// ParseNumber is deliberately lenient: empty or non-numeric input counts as
// zero so the totals computation can never fail. Exported so report rendering
// interprets field values exactly as the totals do.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func knownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

func emptyValues() map[string]string {
	values := make(map[string]string, len(Keys))
	for _, key := range Keys {
		values[key] = ""
	}
	return values
}

func (m *Model) persistLocked() {
	if m.persister == nil {
		return
	}
	payload, err := json.Marshal(m.values)
	if err != nil {
		m.logger.Error("Budget snapshot marshal failed", applog.FieldError, err)
		return
	}
	m.persister.Enqueue(StorageKey, string(payload))
}
