// Package storage persists the ledger: users, expenses, deposits and owners.
package storage

import (
	"context"
	"errors"

	"github.com/vctrubio/summer-expense-tracker/internal/core"
)

var (
	// ErrNotFound covers both genuinely missing rows and rows belonging to
	// another account; callers cannot distinguish the two.
	ErrNotFound = errors.New("record not found")

	// ErrOwnerExists reports a duplicate owner name within one account.
	ErrOwnerExists = errors.New("owner already exists")
)

// TimeRange bounds a listing query inclusively, in epoch millis.
type TimeRange struct {
	Start int64
	End   int64
}

// Store is the persistence interface the services depend on. Every ledger
// method is scoped to an account id; mutations addressing a row outside that
// account report ErrNotFound.
type Store interface {
	CreateUser(ctx context.Context, user *core.User) error
	GetUserByEmail(ctx context.Context, email string) (*core.User, error)
	GetUserByID(ctx context.Context, id string) (*core.User, error)
	ListUsers(ctx context.Context) ([]core.User, error)

	CreateExpense(ctx context.Context, e *core.Expense) error
	UpdateExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, accountID, id string) error
	ListExpenses(ctx context.Context, accountID string, r *TimeRange) ([]core.Expense, error)

	CreateDeposit(ctx context.Context, d *core.Deposit) error
	UpdateDeposit(ctx context.Context, d core.Deposit) error
	DeleteDeposit(ctx context.Context, accountID, id string) error
	ListDeposits(ctx context.Context, accountID string, r *TimeRange) ([]core.Deposit, error)

	CreateOwner(ctx context.Context, o *core.Owner) error
	ListOwners(ctx context.Context, accountID string) ([]core.Owner, error)
	DeleteOwner(ctx context.Context, accountID, id string) error

	Ping(ctx context.Context) error
	Close() error
}
