package importer

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/vctrubio/summer-expense-tracker/internal/core"
)

// exportHeader is the fixed CSV header row for ledger exports.
var exportHeader = []string{"Date", "Type", "Amount", "Description", "Owner"}

// WriteCSV renders the ledger as CSV: header row then one row per
// transaction, fields comma-joined and double-quote-wrapped, rows ordered by
// descending timestamp. kind narrows the export to one transaction kind;
// empty exports both.
func WriteCSV(w io.Writer, expenses []core.Expense, deposits []core.Deposit, kind core.TxKind, loc *time.Location) error {
	type row struct {
		timestamp int64
		fields    []string
	}

	var rows []row
	if kind == "" || kind == core.KindExpense {
		for _, e := range expenses {
			rows = append(rows, row{e.Timestamp, []string{
				formatDate(e.Timestamp, loc),
				string(core.KindExpense),
				e.Amount.Format(),
				e.Description,
				e.Destination,
			}})
		}
	}
	if kind == "" || kind == core.KindDeposit {
		for _, d := range deposits {
			rows = append(rows, row{d.Timestamp, []string{
				formatDate(d.Timestamp, loc),
				string(core.KindDeposit),
				d.Amount.Format(),
				d.Description,
				d.Source,
			}})
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].timestamp > rows[j].timestamp
	})

	if err := writeRow(w, exportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writeRow(w, r.fields); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		// Embedded quotes would corrupt the row; drop them.
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, "") + `"`
	}
	_, err := fmt.Fprintln(w, strings.Join(quoted, ","))
	return err
}

func formatDate(ms int64, loc *time.Location) string {
	return core.MillisToTime(ms, loc).Format("2006-01-02")
}
