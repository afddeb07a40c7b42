package core

import (
	"errors"
	"strings"
	"time"
)

// TxKind discriminates the two transaction kinds stored in the ledger.
type TxKind string

const (
	KindExpense TxKind = "expense"
	KindDeposit TxKind = "deposit"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidKind      = errors.New("invalid transaction kind")
)

// Valid reports whether k is one of the known transaction kinds.
func (k TxKind) Valid() bool {
	return k == KindExpense || k == KindDeposit
}

// Expense is money spent, optionally attributed to a destination owner.
// An empty Destination means the expense is shared/unattributed.
type Expense struct {
	ID          string `json:"id"`
	AccountID   string `json:"-"`
	Timestamp   int64  `json:"timestamp"` // epoch millis
	Amount      Money  `json:"amount"`
	Description string `json:"description"`
	Destination string `json:"destination,omitempty"`
}

// Deposit is money contributed, optionally attributed to a source owner.
// An empty Source means the deposit is unattributed; such deposits are
// excluded from settlement entirely.
type Deposit struct {
	ID          string `json:"id"`
	AccountID   string `json:"-"`
	Timestamp   int64  `json:"timestamp"` // epoch millis
	Amount      Money  `json:"amount"`
	Description string `json:"description"`
	Source      string `json:"source,omitempty"`
}

// Owner is a named party eligible to be the destination of an expense or the
// source of a deposit. Names are unique per account. Transactions reference
// owners by name only; deleting an owner does not cascade.
type Owner struct {
	ID        string `json:"id"`
	AccountID string `json:"-"`
	Name      string `json:"name"`
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

func (d Deposit) Validate() error {
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(d.Description) == "" {
		return ErrEmptyDescription
	}
	return nil
}

// NowMillis returns the current time as epoch milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// MillisToTime converts epoch milliseconds to a time.Time in the given
// location. Day boundaries follow the timestamp's represented local date.
func MillisToTime(ms int64, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc)
}
