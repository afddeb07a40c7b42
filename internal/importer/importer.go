// Package importer converts loosely-structured text into validated
// transaction drafts, and renders the ledger back out as CSV.
//
// Two input grammars are supported. The quick-entry grammar rejects malformed
// lines at parse time; the delimited-file grammar materializes every row as a
// draft and defers all rejection to the insertion step. The asymmetry is
// deliberate: a preview table can show and fix a bad file row, while a bad
// quick-entry line is just noise.
package importer

import (
	"strconv"
	"strings"
	"time"

	"github.com/vctrubio/summer-expense-tracker/internal/core"
)

// Draft is one parsed, not-yet-validated transaction. All fields are raw
// strings so a preview surface can display and edit them before commit.
type Draft struct {
	Kind        core.TxKind `json:"kind"`
	Date        string      `json:"date"`   // "" means "now" at insertion
	Amount      string      `json:"amount"` // raw decimal text
	Description string      `json:"description"`
	Owner       string      `json:"owner"` // destination or source, may be empty
}

// Normalized is a draft that passed insertion validation.
type Normalized struct {
	Kind        core.TxKind
	Timestamp   int64
	Amount      core.Money
	Description string
	Owner       string
}

// ParseQuickText parses the line-per-entry shorthand: each non-blank line is
// "amount, description[, destination]". A line is dropped (never fatal) when
// it has fewer than two comma-separated fields or its first field is not a
// finite decimal number. Every accepted draft carries date (may be empty)
// and defaults to an expense.
func ParseQuickText(text, date string) []Draft {
	var drafts []Draft
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) < 2 {
			continue
		}
		if _, err := strconv.ParseFloat(parts[0], 64); err != nil {
			continue
		}

		draft := Draft{
			Kind:        core.KindExpense,
			Date:        date,
			Amount:      parts[0],
			Description: parts[1],
		}
		if len(parts) > 2 {
			draft.Owner = parts[2]
		}
		drafts = append(drafts, draft)
	}
	return drafts
}

// ParseDelimited parses the header-less uploaded-file shorthand: one row per
// line, "date, amount, description, destination?". Quote characters are
// stripped, missing trailing columns default to empty. No row is rejected
// here; malformed rows surface at the insertion step.
func ParseDelimited(text string) []Draft {
	var drafts []Draft
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		cols := strings.Split(line, ",")
		field := func(i int) string {
			if i >= len(cols) {
				return ""
			}
			return strings.TrimSpace(strings.ReplaceAll(cols[i], `"`, ""))
		}

		drafts = append(drafts, Draft{
			Kind:        core.KindExpense,
			Date:        field(0),
			Amount:      field(1),
			Description: field(2),
			Owner:       field(3),
		})
	}
	return drafts
}

// dateLayouts are tried in order when resolving a draft's date field.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"01/02/2006",
	"2006/01/02",
}

// Normalize validates a draft for insertion. It fails when the amount does
// not parse as a positive decimal or the description is empty after
// trimming. An absent or unparsable date resolves to now.
func Normalize(d Draft, now time.Time) (Normalized, error) {
	amount, err := core.ParseAmount(d.Amount)
	if err != nil {
		return Normalized{}, err
	}

	desc := strings.TrimSpace(d.Description)
	if desc == "" {
		return Normalized{}, core.ErrEmptyDescription
	}

	kind := d.Kind
	if kind == "" {
		kind = core.KindExpense
	}
	if !kind.Valid() {
		return Normalized{}, core.ErrInvalidKind
	}

	return Normalized{
		Kind:        kind,
		Timestamp:   resolveDate(d.Date, now),
		Amount:      amount,
		Description: desc,
		Owner:       strings.TrimSpace(d.Owner),
	}, nil
}

func resolveDate(raw string, now time.Time) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.UnixMilli()
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, now.Location()); err == nil {
			return t.UnixMilli()
		}
	}
	return now.UnixMilli()
}
