package balance

import (
	"testing"

	"github.com/vctrubio/summer-expense-tracker/internal/core"
)

func money(cents int64) core.Money { return core.Money{Cents: cents} }

func owners(names ...string) []core.Owner {
	out := make([]core.Owner, len(names))
	for i, n := range names {
		out[i] = core.Owner{ID: n, Name: n}
	}
	return out
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{name: "default", policy: DefaultPolicy()},
		{name: "even split", policy: Policy{{"A", 0.5}, {"B", 0.5}}},
		{name: "one party", policy: Policy{{"A", 1.0}}, wantErr: true},
		{name: "three parties", policy: Policy{{"A", 0.4}, {"B", 0.3}, {"C", 0.3}}, wantErr: true},
		{name: "ratios do not sum to one", policy: Policy{{"A", 0.5}, {"B", 0.4}}, wantErr: true},
		{name: "duplicate party", policy: Policy{{"A", 0.5}, {"A", 0.5}}, wantErr: true},
		{name: "empty name", policy: Policy{{"", 0.5}, {"B", 0.5}}, wantErr: true},
		{name: "negative ratio", policy: Policy{{"A", 1.5}, {"B", -0.5}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCalculateSharedApportionment(t *testing.T) {
	// Unattributed 90.00 expense splits 2/3-1/3; Robena deposited 30.00.
	expenses := []core.Expense{{Amount: money(9000), Description: "groceries"}}
	deposits := []core.Deposit{{Amount: money(3000), Description: "transfer", Source: "Robena"}}

	report := Calculate(expenses, deposits, owners("Robena", "Patricia"), DefaultPolicy())

	if report.TotalSharedExpenses != money(9000) {
		t.Errorf("TotalSharedExpenses = %v, want 9000", report.TotalSharedExpenses.Cents)
	}

	robena := report.OwnerBalances["Robena"]
	patricia := report.OwnerBalances["Patricia"]
	if robena.SharedExpenses != money(6000) {
		t.Errorf("Robena shared = %d, want 6000", robena.SharedExpenses.Cents)
	}
	if patricia.SharedExpenses != money(3000) {
		t.Errorf("Patricia shared = %d, want 3000", patricia.SharedExpenses.Cents)
	}
	if got := robena.NetToPay(); got != money(3000) {
		t.Errorf("Robena net = %d, want 3000", got.Cents)
	}
	if got := patricia.NetToPay(); got != money(3000) {
		t.Errorf("Patricia net = %d, want 3000", got.Cents)
	}

	// Both owe into the pool: no direct transfer.
	wantMsgs := []string{
		"The total missing cost for the system is 60.00.",
		"Both Robena and Patricia need to contribute to the system to cover their shares.",
	}
	assertMessages(t, report.Messages, wantMsgs)
}

func TestCalculateDirectTransfer(t *testing.T) {
	// Robena attributed 50.00 expense, deposited 30.00: net +20.
	// Patricia deposited 20.00 with nothing attributed: net -20.
	expenses := []core.Expense{{Amount: money(5000), Description: "rug", Destination: "Robena"}}
	deposits := []core.Deposit{
		{Amount: money(3000), Description: "cash", Source: "Robena"},
		{Amount: money(2000), Description: "cash", Source: "Patricia"},
	}

	report := Calculate(expenses, deposits, owners("Robena", "Patricia"), DefaultPolicy())

	if got := report.OwnerBalances["Robena"].NetToPay(); got != money(2000) {
		t.Fatalf("Robena net = %d, want 2000", got.Cents)
	}
	if got := report.OwnerBalances["Patricia"].NetToPay(); got != money(-2000) {
		t.Fatalf("Patricia net = %d, want -2000", got.Cents)
	}

	assertMessages(t, report.Messages, []string{
		"The system's overall balance is settled.",
		"To settle individual accounts, Patricia pays Robena 20.00.",
	})
}

func TestCalculateSettlementSymmetry(t *testing.T) {
	expenses := []core.Expense{{Amount: money(5000), Description: "rug", Destination: "Robena"}}
	deposits := []core.Deposit{
		{Amount: money(3000), Description: "cash", Source: "Robena"},
		{Amount: money(2000), Description: "cash", Source: "Patricia"},
	}
	reg := owners("Robena", "Patricia")

	forward := Calculate(expenses, deposits, reg, Policy{{"Robena", 2.0 / 3.0}, {"Patricia", 1.0 / 3.0}})
	mirrored := Calculate(expenses, deposits, reg, Policy{{"Patricia", 1.0 / 3.0}, {"Robena", 2.0 / 3.0}})

	// Swapping which party is listed first must produce the same transfer.
	if forward.Messages[1] != mirrored.Messages[1] {
		t.Errorf("settlement not symmetric: %q vs %q", forward.Messages[1], mirrored.Messages[1])
	}
	if forward.SystemBalance != mirrored.SystemBalance {
		t.Errorf("system balance not symmetric: %d vs %d", forward.SystemBalance.Cents, mirrored.SystemBalance.Cents)
	}
}

func TestCalculateMoneyConservation(t *testing.T) {
	expenses := []core.Expense{
		{Amount: money(1234), Description: "a", Destination: "Robena"},
		{Amount: money(5678), Description: "b", Destination: "Patricia"},
		{Amount: money(999), Description: "c"},                     // shared
		{Amount: money(450), Description: "d", Destination: "Ghost"}, // orphaned name, pooled
	}

	report := Calculate(expenses, nil, owners("Robena", "Patricia"), DefaultPolicy())

	var attributed int64
	for _, b := range report.OwnerBalances {
		attributed += b.Expenses.Cents
	}
	total := attributed + report.TotalSharedExpenses.Cents
	if total != 1234+5678+999+450 {
		t.Errorf("money not conserved: attributed+shared = %d", total)
	}

	// Apportioned shares must sum back to the pool exactly.
	sharesSum := report.OwnerBalances["Robena"].SharedExpenses.Cents +
		report.OwnerBalances["Patricia"].SharedExpenses.Cents
	if sharesSum != report.TotalSharedExpenses.Cents {
		t.Errorf("shares sum %d != pool %d", sharesSum, report.TotalSharedExpenses.Cents)
	}
}

func TestCalculateUnattributedDepositDropped(t *testing.T) {
	deposits := []core.Deposit{
		{Amount: money(4000), Description: "who knows"},                    // no source
		{Amount: money(2500), Description: "stale name", Source: "Ghost"}, // deleted owner
	}

	report := Calculate(nil, deposits, owners("Robena", "Patricia"), DefaultPolicy())

	// Unattributed funding is not apportioned anywhere: every accumulator
	// stays zero and the system is settled.
	for name, b := range report.OwnerBalances {
		if b.Deposits.Cents != 0 {
			t.Errorf("owner %s unexpectedly credited %d", name, b.Deposits.Cents)
		}
	}
	if !report.SystemBalance.IsZero() {
		t.Errorf("system balance = %d, want 0", report.SystemBalance.Cents)
	}
}

func TestCalculateOwnersWithoutTransactions(t *testing.T) {
	report := Calculate(nil, nil, owners("Robena", "Patricia", "Visitor"), DefaultPolicy())

	for _, name := range []string{"Robena", "Patricia", "Visitor"} {
		if _, ok := report.OwnerBalances[name]; !ok {
			t.Errorf("owner %s missing from report", name)
		}
	}
	assertMessages(t, report.Messages, []string{
		"The system's overall balance is settled.",
		"Individual balances are settled.",
	})
}

func TestCalculatePartyOutsidePolicy(t *testing.T) {
	// A registered owner outside the designated pair never receives a shared
	// apportionment.
	expenses := []core.Expense{{Amount: money(3000), Description: "shared"}}

	report := Calculate(expenses, nil, owners("Robena", "Patricia", "Visitor"), DefaultPolicy())

	if got := report.OwnerBalances["Visitor"].SharedExpenses; !got.IsZero() {
		t.Errorf("Visitor shared = %d, want 0", got.Cents)
	}
}

func TestCalculateBothOverpaid(t *testing.T) {
	deposits := []core.Deposit{
		{Amount: money(1000), Description: "cash", Source: "Robena"},
		{Amount: money(500), Description: "cash", Source: "Patricia"},
	}

	report := Calculate(nil, deposits, owners("Robena", "Patricia"), DefaultPolicy())

	assertMessages(t, report.Messages, []string{
		"The system has been overpaid by 15.00.",
		"Both Robena and Patricia have overpaid the system.",
	})
}

func assertMessages(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("messages = %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
