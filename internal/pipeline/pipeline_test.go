package pipeline

import (
	"reflect"
	"testing"
	"time"

	"github.com/vctrubio/summer-expense-tracker/internal/core"
)

var testLoc = time.UTC

// fixed "now": Wednesday 2024-06-12 15:04 UTC
var testNow = time.Date(2024, time.June, 12, 15, 4, 0, 0, testLoc)

func at(day int, hour int) int64 {
	return time.Date(2024, time.June, day, hour, 0, 0, 0, testLoc).UnixMilli()
}

func sampleLedger() ([]core.Expense, []core.Deposit) {
	expenses := []core.Expense{
		{ID: "e1", Timestamp: at(12, 9), Amount: core.Money{Cents: 2000}, Description: "ice cream"},
		{ID: "e2", Timestamp: at(11, 20), Amount: core.Money{Cents: 3900}, Description: "gas", Destination: "Robena"},
		{ID: "e3", Timestamp: at(11, 8), Amount: core.Money{Cents: 1500}, Description: "coffee"},
		{ID: "e4", Timestamp: at(10, 12), Amount: core.Money{Cents: 9000}, Description: "groceries"},
	}
	deposits := []core.Deposit{
		{ID: "d1", Timestamp: at(12, 10), Amount: core.Money{Cents: 5000}, Description: "top up", Source: "Patricia"},
		{ID: "d2", Timestamp: at(10, 18), Amount: core.Money{Cents: 3000}, Description: "cash", Source: "Robena"},
	}
	return expenses, deposits
}

func ids(groups []Group) [][]string {
	out := make([][]string, len(groups))
	for i, g := range groups {
		for _, r := range g.Records {
			out[i] = append(out[i], r.ID)
		}
	}
	return out
}

func TestBuildGroupsByDateNewestFirst(t *testing.T) {
	expenses, deposits := sampleLedger()

	groups := Build(expenses, deposits, Filter{}, testNow)

	want := [][]string{
		{"d1", "e1"},       // June 12
		{"e2", "e3"},       // June 11
		{"d2", "e4"},       // June 10
	}
	if got := ids(groups); !reflect.DeepEqual(got, want) {
		t.Fatalf("groups = %v, want %v", got, want)
	}

	// Records within each group are timestamp-descending and dates never
	// share a group.
	seen := make(map[time.Time]bool)
	for _, g := range groups {
		if seen[g.Date] {
			t.Errorf("date %v appears in two groups", g.Date)
		}
		seen[g.Date] = true
		for i := 1; i < len(g.Records); i++ {
			if g.Records[i-1].Timestamp < g.Records[i].Timestamp {
				t.Errorf("group %v records not timestamp-descending", g.Date)
			}
		}
	}
}

func TestBuildHeaders(t *testing.T) {
	expenses, deposits := sampleLedger()

	groups := Build(expenses, deposits, Filter{}, testNow)

	wantHeaders := []Header{
		{DayOfWeek: "Wednesday", MonthDay: "Jun 12", Relative: "Today"},
		{DayOfWeek: "Tuesday", MonthDay: "Jun 11", Relative: "Yesterday"},
		{DayOfWeek: "Monday", MonthDay: "Jun 10", Relative: "2 days ago"},
	}
	for i, g := range groups {
		if g.Header != wantHeaders[i] {
			t.Errorf("header[%d] = %+v, want %+v", i, g.Header, wantHeaders[i])
		}
	}
}

func TestBuildFutureRelativeLabels(t *testing.T) {
	expenses := []core.Expense{
		{ID: "tomorrow", Timestamp: at(13, 9), Amount: core.Money{Cents: 100}, Description: "x"},
		{ID: "later", Timestamp: at(15, 9), Amount: core.Money{Cents: 100}, Description: "y"},
	}

	groups := Build(expenses, nil, Filter{}, testNow)

	if got := groups[0].Header.Relative; got != "In 3 days" {
		t.Errorf("relative = %q, want %q", got, "In 3 days")
	}
	if got := groups[1].Header.Relative; got != "Tomorrow" {
		t.Errorf("relative = %q, want %q", got, "Tomorrow")
	}
}

func TestBuildTypeFilter(t *testing.T) {
	expenses, deposits := sampleLedger()

	groups := Build(expenses, deposits, Filter{Kind: core.KindDeposit}, testNow)

	for _, g := range groups {
		for _, r := range g.Records {
			if r.Kind != core.KindDeposit {
				t.Errorf("record %s has kind %s, want deposit", r.ID, r.Kind)
			}
		}
		if !g.ExpenseTotal.IsZero() {
			t.Errorf("deposit-only group has expense total %d", g.ExpenseTotal.Cents)
		}
	}
}

func TestBuildOwnerFilter(t *testing.T) {
	expenses, deposits := sampleLedger()

	groups := Build(expenses, deposits, Filter{Owner: "Robena"}, testNow)

	want := [][]string{{"e2"}, {"d2"}}
	if got := ids(groups); !reflect.DeepEqual(got, want) {
		t.Fatalf("owner filter = %v, want %v", got, want)
	}
}

func TestBuildDateRangeInclusive(t *testing.T) {
	expenses, deposits := sampleLedger()
	start := at(11, 8)  // exactly e3
	end := at(11, 20)   // exactly e2

	groups := Build(expenses, deposits, Filter{Start: &start, End: &end}, testNow)

	want := [][]string{{"e2", "e3"}}
	if got := ids(groups); !reflect.DeepEqual(got, want) {
		t.Fatalf("range filter = %v, want %v", got, want)
	}
}

func TestBuildSortByExpenseTotal(t *testing.T) {
	expenses, deposits := sampleLedger()
	// Day totals: Jun 12 = 20.00, Jun 11 = 54.00, Jun 10 = 90.00.

	highest := Build(expenses, deposits, Filter{Sort: SortHighest}, testNow)
	if got := ids(highest); !reflect.DeepEqual(got, [][]string{{"d2", "e4"}, {"e2", "e3"}, {"d1", "e1"}}) {
		t.Errorf("highest order = %v", got)
	}

	lowest := Build(expenses, deposits, Filter{Sort: SortLowest}, testNow)
	if got := ids(lowest); !reflect.DeepEqual(got, [][]string{{"d1", "e1"}, {"e2", "e3"}, {"d2", "e4"}}) {
		t.Errorf("lowest order = %v", got)
	}
}

func TestTotals(t *testing.T) {
	expenses, deposits := sampleLedger()

	groups := Build(expenses, deposits, Filter{}, testNow)

	expenseTotal, depositTotal := Totals(groups)
	if expenseTotal.Cents != 16400 {
		t.Errorf("expense total = %d, want 16400", expenseTotal.Cents)
	}
	if depositTotal.Cents != 8000 {
		t.Errorf("deposit total = %d, want 8000", depositTotal.Cents)
	}
}

func TestBuildIdempotent(t *testing.T) {
	expenses, deposits := sampleLedger()
	f := Filter{Sort: SortHighest}

	first := Build(expenses, deposits, f, testNow)
	second := Build(expenses, deposits, f, testNow)

	if !reflect.DeepEqual(first, second) {
		t.Error("repeated Build calls with unchanged input differ")
	}
}

func TestBuildEmptyInput(t *testing.T) {
	groups := Build(nil, nil, Filter{}, testNow)
	if len(groups) != 0 {
		t.Fatalf("empty input produced %d groups", len(groups))
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	expenses, deposits := sampleLedger()
	wantExp := make([]core.Expense, len(expenses))
	copy(wantExp, expenses)

	Build(expenses, deposits, Filter{Sort: SortLowest}, testNow)

	if !reflect.DeepEqual(expenses, wantExp) {
		t.Error("Build mutated the expense slice")
	}
}
