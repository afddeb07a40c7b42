package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vctrubio/summer-expense-tracker/internal/core"
	"github.com/vctrubio/summer-expense-tracker/internal/middleware/session"
)

func (h *handlers) listOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := h.ledger.ListOwners(r.Context(), session.AccountID(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list owners")
		return
	}
	if owners == nil {
		owners = []core.Owner{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"owners": owners})
}

func (h *handlers) createOwner(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "owner name is required")
		return
	}

	o := core.Owner{AccountID: session.AccountID(r.Context()), Name: req.Name}
	if err := h.ledger.CreateOwner(r.Context(), &o); err != nil {
		respondLedgerError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *handlers) deleteOwner(w http.ResponseWriter, r *http.Request) {
	accountID := session.AccountID(r.Context())
	if err := h.ledger.DeleteOwner(r.Context(), accountID, chi.URLParam(r, "id")); err != nil {
		respondLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) balance(w http.ResponseWriter, r *http.Request) {
	report, err := h.ledger.Balance(r.Context(), session.AccountID(r.Context()))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to compute balance")
		return
	}
	respondJSON(w, http.StatusOK, report)
}
