package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/romaric67/bdget-app/internal/budget"
	"github.com/romaric67/bdget-app/internal/core"
	"github.com/romaric67/bdget-app/internal/export"
	applog "github.com/romaric67/bdget-app/internal/log"
)

type budgetResponse struct {
	Values map[string]string `json:"values"`
	Totals core.BudgetTotals `json:"totals"`
}

type setFieldRequest struct {
	Value string `json:"value"`
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	writeJSON(w, http.StatusOK, budgetResponse{
		Values: s.budget.Values(),
		Totals: s.budget.Totals(),
	})
}

func (s *Server) handleBudgetField(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, "PUT")
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/api/budget/fields/")
	if key == "" || strings.Contains(key, "/") {
		writeError(w, http.StatusBadRequest, "invalid field key")
		return
	}

	var req setFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.budget.SetField(r.Context(), key, req.Value); err != nil {
		if errors.Is(err, budget.ErrUnknownField) {
			writeError(w, http.StatusUnprocessableEntity, "unknown budget field: "+key)
			return
		}
		s.logger.ErrorContext(r.Context(), "Failed to set budget field",
			applog.FieldBudgetField, key, applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, budgetResponse{
		Values: s.budget.Values(),
		Totals: s.budget.Totals(),
	})
}

func (s *Server) handleBudgetReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	s.budget.Reset(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBudgetReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
	_, _ = w.Write([]byte(s.budget.Report()))
}

func (s *Server) handleBudgetShareText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s.budget.ShareText()))
}

func (s *Server) handleBudgetExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	path, err := s.budget.Export(r.Context())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Budget export failed", applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}
