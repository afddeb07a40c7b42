package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vctrubio/summer-expense-tracker/internal/core"
	"github.com/vctrubio/summer-expense-tracker/internal/middleware/session"
	"github.com/vctrubio/summer-expense-tracker/internal/pipeline"
	"github.com/vctrubio/summer-expense-tracker/internal/storage"
)

type transactionRequest struct {
	Timestamp   int64      `json:"timestamp,omitempty"`
	Amount      core.Money `json:"amount"`
	Description string     `json:"description"`
	Owner       string     `json:"owner,omitempty"`
}

// listTransactions serves the grouped ledger view. Query parameters:
// kind, owner, sort (date|highest|lowest), start, end (epoch millis).
func (h *handlers) listTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := session.AccountID(r.Context())

	f := pipeline.Filter{
		Kind:  core.TxKind(r.URL.Query().Get("kind")),
		Owner: r.URL.Query().Get("owner"),
		Sort:  pipeline.SortOrder(r.URL.Query().Get("sort")),
	}
	if f.Kind != "" && !f.Kind.Valid() {
		respondError(w, http.StatusBadRequest, "invalid kind")
		return
	}
	var err error
	if f.Start, err = optionalMillis(r, "start"); err != nil {
		respondError(w, http.StatusBadRequest, "invalid start")
		return
	}
	if f.End, err = optionalMillis(r, "end"); err != nil {
		respondError(w, http.StatusBadRequest, "invalid end")
		return
	}

	groups, err := h.ledger.ListTransactions(r.Context(), accountID, f, time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}
	expenseTotal, depositTotal := pipeline.Totals(groups)
	respondJSON(w, http.StatusOK, map[string]any{
		"groups":        groups,
		"expense_total": expenseTotal,
		"deposit_total": depositTotal,
	})
}

func (h *handlers) transactionRange(w http.ResponseWriter, r *http.Request) {
	accountID := session.AccountID(r.Context())

	earliest, latest, ok, err := h.ledger.TransactionRange(r.Context(), accountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to compute range")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"earliest": earliest,
		"latest":   latest,
		"empty":    !ok,
	})
}

func (h *handlers) deleteAllTransactions(w http.ResponseWriter, r *http.Request) {
	accountID := session.AccountID(r.Context())

	deleted, err := h.ledger.DeleteAllTransactions(r.Context(), accountID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete transactions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

// --- expenses ---

func (h *handlers) createExpense(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e := core.Expense{
		AccountID:   session.AccountID(r.Context()),
		Timestamp:   req.Timestamp,
		Amount:      req.Amount,
		Description: req.Description,
		Destination: req.Owner,
	}
	if err := h.ledger.CreateExpense(r.Context(), &e); err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

func (h *handlers) updateExpense(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	e := core.Expense{
		ID:          chi.URLParam(r, "id"),
		AccountID:   session.AccountID(r.Context()),
		Timestamp:   req.Timestamp,
		Amount:      req.Amount,
		Description: req.Description,
		Destination: req.Owner,
	}
	if err := h.ledger.UpdateExpense(r.Context(), e); err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func (h *handlers) deleteExpense(w http.ResponseWriter, r *http.Request) {
	accountID := session.AccountID(r.Context())
	if err := h.ledger.DeleteExpense(r.Context(), accountID, chi.URLParam(r, "id")); err != nil {
		respondLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- deposits ---

func (h *handlers) createDeposit(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d := core.Deposit{
		AccountID:   session.AccountID(r.Context()),
		Timestamp:   req.Timestamp,
		Amount:      req.Amount,
		Description: req.Description,
		Source:      req.Owner,
	}
	if err := h.ledger.CreateDeposit(r.Context(), &d); err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, d)
}

func (h *handlers) updateDeposit(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d := core.Deposit{
		ID:          chi.URLParam(r, "id"),
		AccountID:   session.AccountID(r.Context()),
		Timestamp:   req.Timestamp,
		Amount:      req.Amount,
		Description: req.Description,
		Source:      req.Owner,
	}
	if err := h.ledger.UpdateDeposit(r.Context(), d); err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (h *handlers) deleteDeposit(w http.ResponseWriter, r *http.Request) {
	accountID := session.AccountID(r.Context())
	if err := h.ledger.DeleteDeposit(r.Context(), accountID, chi.URLParam(r, "id")); err != nil {
		respondLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func respondLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, storage.ErrOwnerExists):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrEmptyDescription),
		errors.Is(err, core.ErrInvalidKind):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func optionalMillis(r *http.Request, key string) (*int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &ms, nil
}
