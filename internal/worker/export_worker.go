// Package worker maintains per-account CSV snapshots of the ledger,
// driven by transaction events and a periodic full refresh.
package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vctrubio/summer-expense-tracker/internal/amqp"
	"github.com/vctrubio/summer-expense-tracker/internal/importer"
	"github.com/vctrubio/summer-expense-tracker/internal/log"
	"github.com/vctrubio/summer-expense-tracker/internal/storage"
)

// maxConcurrentExports bounds the refresh fan-out so a large user table
// does not overwhelm the database.
const maxConcurrentExports = 4

type ExportWorker struct {
	store     storage.Store
	exportDir string
	loc       *time.Location
	logger    *log.Logger
}

func NewExportWorker(store storage.Store, exportDir string, loc *time.Location, logger *log.Logger) *ExportWorker {
	if loc == nil {
		loc = time.Local
	}
	return &ExportWorker{
		store:     store,
		exportDir: exportDir,
		loc:       loc,
		logger:    logger,
	}
}

// HandleEvent re-exports the snapshot for the account named in the
// event. The event payload carries identity only; the export always
// reads current state from the store.
func (w *ExportWorker) HandleEvent(ctx context.Context, evt *amqp.TransactionEvent) error {
	w.logger.Info("Refreshing export snapshot",
		"account_id", evt.AccountID,
		"trigger", evt.Action)
	return w.ExportAccount(ctx, evt.AccountID)
}

// ExportAccount writes the account's full ledger as CSV. The file is
// written to a temp path first and renamed so readers never see a
// partial snapshot.
func (w *ExportWorker) ExportAccount(ctx context.Context, accountID string) error {
	expenses, err := w.store.ListExpenses(ctx, accountID, nil)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}
	deposits, err := w.store.ListDeposits(ctx, accountID, nil)
	if err != nil {
		return fmt.Errorf("list deposits: %w", err)
	}

	if err := os.MkdirAll(w.exportDir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	final := filepath.Join(w.exportDir, accountID+".csv")
	tmp, err := os.CreateTemp(w.exportDir, accountID+"-*.csv.tmp")
	if err != nil {
		return fmt.Errorf("create temp export: %w", err)
	}

	if err := importer.WriteCSV(tmp, expenses, deposits, "", w.loc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp export: %w", err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace export: %w", err)
	}

	w.logger.Info("Export snapshot written",
		"account_id", accountID,
		"rows", len(expenses)+len(deposits),
		"path", final)
	return nil
}

// RefreshAll re-exports every account, a few at a time. Used on
// startup and on the periodic timer to recover from missed events.
func (w *ExportWorker) RefreshAll(ctx context.Context) error {
	users, err := w.store.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentExports)
	for _, user := range users {
		user := user
		g.Go(func() error {
			return w.ExportAccount(ctx, user.ID)
		})
	}
	return g.Wait()
}
