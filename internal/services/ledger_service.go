package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/vctrubio/summer-expense-tracker/internal/amqp"
	"github.com/vctrubio/summer-expense-tracker/internal/balance"
	"github.com/vctrubio/summer-expense-tracker/internal/cache"
	"github.com/vctrubio/summer-expense-tracker/internal/core"
	"github.com/vctrubio/summer-expense-tracker/internal/importer"
	"github.com/vctrubio/summer-expense-tracker/internal/pipeline"
	"github.com/vctrubio/summer-expense-tracker/internal/storage"
)

// EventPublisher publishes transaction change notifications. A nil
// publisher disables events.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, evt *amqp.TransactionEvent) error
}

// LedgerService orchestrates ledger operations across storage and AMQP.
type LedgerService struct {
	store  storage.Store
	events EventPublisher
	policy balance.Policy

	// reports caches balance reports per account; any mutation on the
	// account invalidates its entry.
	reports *cache.LRUCache[*balance.Report]
}

func NewLedgerService(store storage.Store, events EventPublisher, policy balance.Policy) *LedgerService {
	return &LedgerService{
		store:   store,
		events:  events,
		policy:  policy,
		reports: cache.NewLRUCache[*balance.Report](64, 30*time.Second),
	}
}

// CreateExpense validates and saves an expense, then publishes an event.
func (s *LedgerService) CreateExpense(ctx context.Context, e *core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.store.CreateExpense(ctx, e); err != nil {
		return fmt.Errorf("save expense: %w", err)
	}
	s.publish(ctx, e.AccountID, e.ID, core.KindExpense, amqp.ActionCreated)
	return nil
}

// UpdateExpense replaces all mutable fields of an expense.
func (s *LedgerService) UpdateExpense(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateExpense(ctx, e); err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	s.publish(ctx, e.AccountID, e.ID, core.KindExpense, amqp.ActionUpdated)
	return nil
}

func (s *LedgerService) DeleteExpense(ctx context.Context, accountID, id string) error {
	if err := s.store.DeleteExpense(ctx, accountID, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.publish(ctx, accountID, id, core.KindExpense, amqp.ActionDeleted)
	return nil
}

// CreateDeposit validates and saves a deposit, then publishes an event.
func (s *LedgerService) CreateDeposit(ctx context.Context, d *core.Deposit) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := s.store.CreateDeposit(ctx, d); err != nil {
		return fmt.Errorf("save deposit: %w", err)
	}
	s.publish(ctx, d.AccountID, d.ID, core.KindDeposit, amqp.ActionCreated)
	return nil
}

func (s *LedgerService) UpdateDeposit(ctx context.Context, d core.Deposit) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if err := s.store.UpdateDeposit(ctx, d); err != nil {
		return fmt.Errorf("update deposit: %w", err)
	}
	s.publish(ctx, d.AccountID, d.ID, core.KindDeposit, amqp.ActionUpdated)
	return nil
}

func (s *LedgerService) DeleteDeposit(ctx context.Context, accountID, id string) error {
	if err := s.store.DeleteDeposit(ctx, accountID, id); err != nil {
		return fmt.Errorf("delete deposit: %w", err)
	}
	s.publish(ctx, accountID, id, core.KindDeposit, amqp.ActionDeleted)
	return nil
}

// DeleteAllTransactions removes every expense and deposit on the
// account, one row at a time. Rows deleted before a failure stay
// deleted.
func (s *LedgerService) DeleteAllTransactions(ctx context.Context, accountID string) (int, error) {
	expenses, err := s.store.ListExpenses(ctx, accountID, nil)
	if err != nil {
		return 0, fmt.Errorf("list expenses: %w", err)
	}
	deposits, err := s.store.ListDeposits(ctx, accountID, nil)
	if err != nil {
		return 0, fmt.Errorf("list deposits: %w", err)
	}

	deleted := 0
	for _, e := range expenses {
		if err := s.DeleteExpense(ctx, accountID, e.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	for _, d := range deposits {
		if err := s.DeleteDeposit(ctx, accountID, d.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

// ListTransactions returns the account's ledger filtered, sorted, and
// grouped by calendar day.
func (s *LedgerService) ListTransactions(ctx context.Context, accountID string, f pipeline.Filter, now time.Time) ([]pipeline.Group, error) {
	var tr *storage.TimeRange
	if f.Start != nil && f.End != nil {
		tr = &storage.TimeRange{Start: *f.Start, End: *f.End}
	}

	expenses, err := s.store.ListExpenses(ctx, accountID, tr)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	deposits, err := s.store.ListDeposits(ctx, accountID, tr)
	if err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}

	return pipeline.Build(expenses, deposits, f, now), nil
}

// TransactionRange reports the earliest and latest transaction
// timestamps on the account. ok is false for an empty ledger.
func (s *LedgerService) TransactionRange(ctx context.Context, accountID string) (earliest, latest int64, ok bool, err error) {
	expenses, err := s.store.ListExpenses(ctx, accountID, nil)
	if err != nil {
		return 0, 0, false, fmt.Errorf("list expenses: %w", err)
	}
	deposits, err := s.store.ListDeposits(ctx, accountID, nil)
	if err != nil {
		return 0, 0, false, fmt.Errorf("list deposits: %w", err)
	}

	for _, e := range expenses {
		earliest, latest, ok = widen(earliest, latest, ok, e.Timestamp)
	}
	for _, d := range deposits {
		earliest, latest, ok = widen(earliest, latest, ok, d.Timestamp)
	}
	return earliest, latest, ok, nil
}

func widen(earliest, latest int64, ok bool, ts int64) (int64, int64, bool) {
	if !ok {
		return ts, ts, true
	}
	if ts < earliest {
		earliest = ts
	}
	if ts > latest {
		latest = ts
	}
	return earliest, latest, true
}

// Balance computes the settlement report for the account.
func (s *LedgerService) Balance(ctx context.Context, accountID string) (*balance.Report, error) {
	if cached, ok := s.reports.Get(accountID); ok {
		return cached, nil
	}

	expenses, err := s.store.ListExpenses(ctx, accountID, nil)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	deposits, err := s.store.ListDeposits(ctx, accountID, nil)
	if err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}
	owners, err := s.store.ListOwners(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}

	report := balance.Calculate(expenses, deposits, owners, s.policy)
	s.reports.Set(accountID, &report)
	return &report, nil
}

// ImportResult summarizes a batch import.
type ImportResult struct {
	Created int `json:"created"`
	Failed  int `json:"failed"`
}

// ImportBatch normalizes and saves drafts one by one. A bad draft is
// counted and skipped, it never aborts the batch.
func (s *LedgerService) ImportBatch(ctx context.Context, accountID string, drafts []importer.Draft, now time.Time) (ImportResult, error) {
	var res ImportResult
	for _, draft := range drafts {
		n, err := importer.Normalize(draft, now)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unimportable draft",
				"description", draft.Description, "error", err)
			res.Failed++
			continue
		}

		switch n.Kind {
		case core.KindDeposit:
			err = s.CreateDeposit(ctx, &core.Deposit{
				AccountID:   accountID,
				Timestamp:   n.Timestamp,
				Amount:      n.Amount,
				Description: n.Description,
				Source:      n.Owner,
			})
		default:
			err = s.CreateExpense(ctx, &core.Expense{
				AccountID:   accountID,
				Timestamp:   n.Timestamp,
				Amount:      n.Amount,
				Description: n.Description,
				Destination: n.Owner,
			})
		}
		if err != nil {
			slog.WarnContext(ctx, "Failed to save imported transaction",
				"description", n.Description, "error", err)
			res.Failed++
			continue
		}
		res.Created++
	}
	return res, nil
}

// ExportCSV streams the account's ledger as CSV. kind may be empty for
// both transaction types.
func (s *LedgerService) ExportCSV(ctx context.Context, accountID string, kind core.TxKind, w io.Writer, loc *time.Location) error {
	expenses, err := s.store.ListExpenses(ctx, accountID, nil)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}
	deposits, err := s.store.ListDeposits(ctx, accountID, nil)
	if err != nil {
		return fmt.Errorf("list deposits: %w", err)
	}
	return importer.WriteCSV(w, expenses, deposits, kind, loc)
}

// Owners

func (s *LedgerService) CreateOwner(ctx context.Context, o *core.Owner) error {
	if err := s.store.CreateOwner(ctx, o); err != nil {
		return fmt.Errorf("create owner: %w", err)
	}
	s.reports.Delete(o.AccountID)
	return nil
}

func (s *LedgerService) ListOwners(ctx context.Context, accountID string) ([]core.Owner, error) {
	owners, err := s.store.ListOwners(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list owners: %w", err)
	}
	return owners, nil
}

// DeleteOwner removes the owner row only. Transactions keep their
// owner string and fall back to the shared pool in balance reports.
func (s *LedgerService) DeleteOwner(ctx context.Context, accountID, id string) error {
	if err := s.store.DeleteOwner(ctx, accountID, id); err != nil {
		return fmt.Errorf("delete owner: %w", err)
	}
	s.reports.Delete(accountID)
	return nil
}

// publish runs after every successful mutation: it invalidates the
// account's cached balance report and sends a change event without
// failing the request. The row is already committed locally.
func (s *LedgerService) publish(ctx context.Context, accountID, id string, kind core.TxKind, action string) {
	s.reports.Delete(accountID)

	if s.events == nil {
		return
	}
	evt := amqp.NewTransactionEvent(accountID, id, string(kind), action)
	if err := s.events.PublishTransactionEvent(ctx, evt); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", id, "action", action, "error", err)
	}
}

// Caches exposes the service's caches for periodic expiry cleanup.
func (s *LedgerService) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.reports}
}

// Close closes the underlying store.
func (s *LedgerService) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
