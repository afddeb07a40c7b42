package http

import (
	"net/http"
	"time"

	"github.com/vctrubio/summer-expense-tracker/internal/core"
	"github.com/vctrubio/summer-expense-tracker/internal/importer"
	"github.com/vctrubio/summer-expense-tracker/internal/log"
	"github.com/vctrubio/summer-expense-tracker/internal/middleware/session"
)

type importPreviewRequest struct {
	// Format selects the parser: "quick" (default) or "delimited".
	Format string `json:"format,omitempty"`
	Text   string `json:"text"`
	// Date is applied to quick-text drafts, which carry no date of
	// their own.
	Date string `json:"date,omitempty"`
}

func (h *handlers) importPreview(w http.ResponseWriter, r *http.Request) {
	var req importPreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var drafts []importer.Draft
	switch req.Format {
	case "", "quick":
		drafts = importer.ParseQuickText(req.Text, req.Date)
	case "delimited":
		drafts = importer.ParseDelimited(req.Text)
	default:
		respondError(w, http.StatusBadRequest, "unknown import format")
		return
	}

	if drafts == nil {
		drafts = []importer.Draft{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"drafts": drafts})
}

func (h *handlers) importCommit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Drafts []importer.Draft `json:"drafts"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.ledger.ImportBatch(r.Context(), session.AccountID(r.Context()), req.Drafts, time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "import failed")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *handlers) exportCSV(w http.ResponseWriter, r *http.Request) {
	kind := core.TxKind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.Valid() {
		respondError(w, http.StatusBadRequest, "invalid kind")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := h.ledger.ExportCSV(r.Context(), session.AccountID(r.Context()), kind, w, time.Local); err != nil {
		// Headers are already written; log and let the body truncate.
		log.FromContext(r.Context()).Error("csv export failed", "error", err)
	}
}
