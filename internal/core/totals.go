package core

// LedgerSummary aggregates the ledger's derived totals. Always recomputed
// from the transaction list, never persisted.
type LedgerSummary struct {
	Balance       float64 `json:"balance"`
	TotalIncome   float64 `json:"totalIncome"`
	TotalExpenses float64 `json:"totalExpenses"`
	Count         int     `json:"count"`
}

// BudgetTotals aggregates the budget form's derived totals.
type BudgetTotals struct {
	TotalIncome   float64 `json:"totalIncome"`
	TotalExpenses float64 `json:"totalExpenses"`
	Remaining     float64 `json:"remaining"`
}
