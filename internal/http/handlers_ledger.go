package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/romaric67/bdget-app/internal/core"
	applog "github.com/romaric67/bdget-app/internal/log"
)

// createTransactionRequest carries the raw form values. Amount arrives as
// the string the user typed; parsing happens here, at the boundary.
type createTransactionRequest struct {
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.ledger.Transactions())
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid amount")
		return
	}

	in := core.TransactionInput{
		Amount:      amount,
		Category:    strings.TrimSpace(req.Category),
		Type:        core.TransactionType(req.Type),
		Description: strings.TrimSpace(req.Description),
	}

	txn, err := s.ledger.AddTransaction(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.logger.InfoContext(r.Context(), "Transaction created",
		applog.FieldTransactionID, txn.ID,
		applog.FieldAmount, txn.Amount,
		applog.FieldCategory, txn.Category)
	writeJSON(w, http.StatusCreated, txn)
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/ledger/transactions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	// Unknown ids fall through silently; deletion is idempotent.
	s.ledger.DeleteTransaction(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLedgerSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	writeJSON(w, http.StatusOK, s.ledger.Summary())
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"categories": s.ledger.Categories()})
}
