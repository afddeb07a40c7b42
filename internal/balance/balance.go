// Package balance turns a snapshot of expenses, deposits and registered owners
// into per-owner net positions and a pairwise settlement recommendation.
//
// All computations are pure functions of their inputs: no side effects, no
// error paths. Absent or unmatched owner names are never errors; an expense
// with no matching destination is pooled as shared group cost, a deposit with
// no matching source is excluded from settlement. That asymmetry is
// deliberate and preserved from the system this replaces.
package balance

import (
	"errors"
	"fmt"
	"math"

	"github.com/vctrubio/summer-expense-tracker/internal/core"
)

// ratioEpsilon is the tolerance when checking that share ratios sum to 1.
const ratioEpsilon = 1e-9

var (
	ErrPolicyShareCount = errors.New("split policy must name exactly two parties")
	ErrPolicyRatioSum   = errors.New("split policy ratios must sum to 1")
	ErrPolicyBadShare   = errors.New("split policy share must have a name and a ratio in (0, 1]")
)

// Share assigns a fraction of the shared-expense pool to one named party.
type Share struct {
	Owner string
	Ratio float64
}

// Policy is the ordered list of shared-cost parties. Settlement is defined
// pairwise, so a valid policy holds exactly two shares.
type Policy []Share

// DefaultPolicy returns the household's standing 2/3-1/3 split.
func DefaultPolicy() Policy {
	return Policy{
		{Owner: "Robena", Ratio: 2.0 / 3.0},
		{Owner: "Patricia", Ratio: 1.0 / 3.0},
	}
}

// Validate checks the policy holds exactly two distinct named parties whose
// ratios sum to 1 within epsilon.
func (p Policy) Validate() error {
	if len(p) != 2 {
		return ErrPolicyShareCount
	}
	sum := 0.0
	for _, s := range p {
		if s.Owner == "" || s.Ratio <= 0 || s.Ratio > 1 {
			return ErrPolicyBadShare
		}
		sum += s.Ratio
	}
	if p[0].Owner == p[1].Owner {
		return ErrPolicyBadShare
	}
	if math.Abs(sum-1) > ratioEpsilon {
		return fmt.Errorf("%w: got %v", ErrPolicyRatioSum, sum)
	}
	return nil
}

// OwnerBalance accumulates one owner's gross positions. Accumulators are
// never negative; subtraction only happens in the derived NetToPay.
type OwnerBalance struct {
	Expenses       core.Money `json:"expenses"`
	Deposits       core.Money `json:"deposits"`
	SharedExpenses core.Money `json:"shared_expenses"`
}

// NetToPay is the owner's attributed expenses plus apportioned shared share,
// minus their deposits. Positive means the owner still owes the pool.
func (b OwnerBalance) NetToPay() core.Money {
	return b.Expenses.Add(b.SharedExpenses).Sub(b.Deposits)
}

// Report is the full settlement view for one account's ledger snapshot.
type Report struct {
	// OwnerBalances has an entry for every registered owner, including
	// owners with no transactions.
	OwnerBalances map[string]OwnerBalance `json:"owner_balances"`

	// TotalSharedExpenses is the pool of unattributed expense amounts.
	TotalSharedExpenses core.Money `json:"total_shared_expenses"`

	// SystemBalance is the sum of the two designated parties' net positions:
	// positive means the pool as a whole is short, negative overpaid.
	SystemBalance core.Money `json:"system_balance"`

	// Messages is the human-readable settlement recommendation.
	Messages []string `json:"messages"`
}

// Calculate aggregates the snapshot into a Report under the given policy.
//
// Expenses whose destination matches a registered owner accrue to that owner;
// all others accrue to the shared pool. Deposits whose source matches a
// registered owner accrue to that owner; all others are dropped. The shared
// pool is then apportioned across the policy's two parties in cents, with the
// second party taking the remainder so the pool total is conserved exactly.
func Calculate(expenses []core.Expense, deposits []core.Deposit, owners []core.Owner, policy Policy) Report {
	balances := make(map[string]OwnerBalance, len(owners))
	for _, o := range owners {
		balances[o.Name] = OwnerBalance{}
	}

	var totalShared core.Money
	for _, e := range expenses {
		if b, ok := balances[e.Destination]; ok && e.Destination != "" {
			b.Expenses = b.Expenses.Add(e.Amount)
			balances[e.Destination] = b
		} else {
			totalShared = totalShared.Add(e.Amount)
		}
	}

	for _, d := range deposits {
		if b, ok := balances[d.Source]; ok && d.Source != "" {
			b.Deposits = b.Deposits.Add(d.Amount)
			balances[d.Source] = b
		}
		// Unattributed deposits are excluded from settlement entirely.
	}

	shares := apportion(totalShared, policy)
	for i, s := range policy {
		if b, ok := balances[s.Owner]; ok {
			b.SharedExpenses = shares[i]
			balances[s.Owner] = b
		}
	}

	report := Report{
		OwnerBalances:       balances,
		TotalSharedExpenses: totalShared,
	}

	// Settlement is restricted to the two designated parties. A party that is
	// not a registered owner contributes a zero net position, mirroring how
	// the report treats a missing accumulator.
	netA := partyNet(balances, policy[0].Owner)
	netB := partyNet(balances, policy[1].Owner)
	report.SystemBalance = netA.Add(netB)
	report.Messages = settlementMessages(policy[0].Owner, netA, policy[1].Owner, netB)

	return report
}

// apportion splits the pool across the policy parties in cents. Every party
// but the last gets its ratio rounded half-up; the last takes the remainder,
// so the allocated shares always sum to the pool.
func apportion(pool core.Money, policy Policy) []core.Money {
	shares := make([]core.Money, len(policy))
	var allocated int64
	for i, s := range policy {
		if i == len(policy)-1 {
			shares[i] = core.Money{Cents: pool.Cents - allocated}
			break
		}
		cents := int64(math.Round(float64(pool.Cents) * s.Ratio))
		shares[i] = core.Money{Cents: cents}
		allocated += cents
	}
	return shares
}

func partyNet(balances map[string]OwnerBalance, name string) core.Money {
	if b, ok := balances[name]; ok {
		return b.NetToPay()
	}
	return core.Money{}
}

// settlementMessages renders the recommendation for the two designated
// parties with net positions a and b.
func settlementMessages(nameA string, a core.Money, nameB string, b core.Money) []string {
	var msgs []string

	system := a.Add(b)
	switch {
	case system.Cents > 0:
		msgs = append(msgs, fmt.Sprintf("The total missing cost for the system is %s.", system.Format()))
	case system.Cents < 0:
		msgs = append(msgs, fmt.Sprintf("The system has been overpaid by %s.", system.Abs().Format()))
	default:
		msgs = append(msgs, "The system's overall balance is settled.")
	}

	switch {
	case a.IsZero() && b.IsZero():
		msgs = append(msgs, "Individual balances are settled.")
	case a.Cents > 0 && b.Cents < 0:
		amount := minMoney(a, b.Abs())
		msgs = append(msgs, fmt.Sprintf("To settle individual accounts, %s pays %s %s.", nameB, nameA, amount.Format()))
	case b.Cents > 0 && a.Cents < 0:
		amount := minMoney(b, a.Abs())
		msgs = append(msgs, fmt.Sprintf("To settle individual accounts, %s pays %s %s.", nameA, nameB, amount.Format()))
	case a.Cents > 0 && b.Cents > 0:
		msgs = append(msgs, fmt.Sprintf("Both %s and %s need to contribute to the system to cover their shares.", nameA, nameB))
	case a.Cents < 0 && b.Cents < 0:
		msgs = append(msgs, fmt.Sprintf("Both %s and %s have overpaid the system.", nameA, nameB))
	}
	// A settled party paired with an unsettled one gets no transfer message.

	return msgs
}

func minMoney(a, b core.Money) core.Money {
	if a.Cents < b.Cents {
		return a
	}
	return b
}
