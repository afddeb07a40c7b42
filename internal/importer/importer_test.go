package importer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vctrubio/summer-expense-tracker/internal/core"
)

func TestParseQuickText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Draft
	}{
		{
			name: "simple entry",
			text: "20, ice cream",
			want: []Draft{{Kind: core.KindExpense, Amount: "20", Description: "ice cream"}},
		},
		{
			name: "entry with destination",
			text: "39, gas, Robena",
			want: []Draft{{Kind: core.KindExpense, Amount: "39", Description: "gas", Owner: "Robena"}},
		},
		{
			name: "unparsable amount dropped",
			text: "abc, test",
			want: nil,
		},
		{
			name: "single field dropped",
			text: "15",
			want: nil,
		},
		{
			name: "blank lines skipped",
			text: "\n  \n20, ice cream\n\n",
			want: []Draft{{Kind: core.KindExpense, Amount: "20", Description: "ice cream"}},
		},
		{
			name: "bad line does not abort batch",
			text: "20, ice cream\nnope\n15, coffee",
			want: []Draft{
				{Kind: core.KindExpense, Amount: "20", Description: "ice cream"},
				{Kind: core.KindExpense, Amount: "15", Description: "coffee"},
			},
		},
		{
			name: "fields are trimmed",
			text: "  12.50 ,  snacks  ,  Patricia ",
			want: []Draft{{Kind: core.KindExpense, Amount: "12.50", Description: "snacks", Owner: "Patricia"}},
		},
		{
			name: "empty destination kept empty",
			text: "8, bus ticket, ",
			want: []Draft{{Kind: core.KindExpense, Amount: "8", Description: "bus ticket"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseQuickText(tt.text, "")
			if len(got) != len(tt.want) {
				t.Fatalf("got %d drafts, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("draft[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseQuickTextAppliesDate(t *testing.T) {
	drafts := ParseQuickText("20, ice cream", "2024-06-10")
	if len(drafts) != 1 || drafts[0].Date != "2024-06-10" {
		t.Fatalf("drafts = %+v, want one draft dated 2024-06-10", drafts)
	}
}

func TestParseDelimitedNeverRejects(t *testing.T) {
	text := "2024-06-10,20,\"ice cream\",Robena\n" +
		"garbage row\n" +
		",,,\n" +
		"2024-06-11,15,coffee"

	drafts := ParseDelimited(text)

	if len(drafts) != 4 {
		t.Fatalf("got %d drafts, want 4 (no parse-time rejection)", len(drafts))
	}

	first := Draft{Kind: core.KindExpense, Date: "2024-06-10", Amount: "20", Description: "ice cream", Owner: "Robena"}
	if drafts[0] != first {
		t.Errorf("draft[0] = %+v, want %+v", drafts[0], first)
	}
	// Malformed rows still materialize with missing columns empty.
	if drafts[1].Date != "garbage row" || drafts[1].Amount != "" {
		t.Errorf("malformed row draft = %+v", drafts[1])
	}
	if drafts[3].Owner != "" {
		t.Errorf("missing trailing column should be empty, got %q", drafts[3].Owner)
	}
}

func TestNormalize(t *testing.T) {
	now := time.Date(2024, time.June, 12, 15, 0, 0, 0, time.UTC)

	t.Run("valid draft", func(t *testing.T) {
		n, err := Normalize(Draft{Amount: "20", Description: " ice cream ", Owner: " Robena "}, now)
		if err != nil {
			t.Fatalf("Normalize returned error: %v", err)
		}
		if n.Amount.Cents != 2000 || n.Description != "ice cream" || n.Owner != "Robena" {
			t.Errorf("normalized = %+v", n)
		}
		if n.Kind != core.KindExpense {
			t.Errorf("kind defaults to expense, got %s", n.Kind)
		}
		if n.Timestamp != now.UnixMilli() {
			t.Errorf("missing date should resolve to now, got %d", n.Timestamp)
		}
	})

	t.Run("date field resolves to that day", func(t *testing.T) {
		n, err := Normalize(Draft{Date: "2024-06-10", Amount: "5", Description: "coffee"}, now)
		if err != nil {
			t.Fatal(err)
		}
		want := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC).UnixMilli()
		if n.Timestamp != want {
			t.Errorf("timestamp = %d, want %d", n.Timestamp, want)
		}
	})

	t.Run("unparsable date falls back to now", func(t *testing.T) {
		n, err := Normalize(Draft{Date: "next tuesday", Amount: "5", Description: "coffee"}, now)
		if err != nil {
			t.Fatal(err)
		}
		if n.Timestamp != now.UnixMilli() {
			t.Errorf("timestamp = %d, want now", n.Timestamp)
		}
	})

	t.Run("bad amount rejected", func(t *testing.T) {
		if _, err := Normalize(Draft{Amount: "abc", Description: "x"}, now); !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("got %v, want ErrInvalidAmount", err)
		}
	})

	t.Run("empty description rejected", func(t *testing.T) {
		if _, err := Normalize(Draft{Amount: "5", Description: "   "}, now); !errors.Is(err, core.ErrEmptyDescription) {
			t.Errorf("got %v, want ErrEmptyDescription", err)
		}
	})

	t.Run("deposit kind preserved", func(t *testing.T) {
		n, err := Normalize(Draft{Kind: core.KindDeposit, Amount: "30", Description: "cash", Owner: "Robena"}, now)
		if err != nil {
			t.Fatal(err)
		}
		if n.Kind != core.KindDeposit {
			t.Errorf("kind = %s, want deposit", n.Kind)
		}
	})
}

func TestWriteCSV(t *testing.T) {
	loc := time.UTC
	ts := func(day int) int64 {
		return time.Date(2024, time.June, day, 12, 0, 0, 0, loc).UnixMilli()
	}
	expenses := []core.Expense{
		{Timestamp: ts(10), Amount: core.Money{Cents: 2000}, Description: "ice cream"},
		{Timestamp: ts(12), Amount: core.Money{Cents: 3900}, Description: "gas", Destination: "Robena"},
	}
	deposits := []core.Deposit{
		{Timestamp: ts(11), Amount: core.Money{Cents: 5000}, Description: "top up", Source: "Patricia"},
	}

	var sb strings.Builder
	if err := WriteCSV(&sb, expenses, deposits, "", loc); err != nil {
		t.Fatal(err)
	}

	want := `"Date","Type","Amount","Description","Owner"
"2024-06-12","expense","39.00","gas","Robena"
"2024-06-11","deposit","50.00","top up","Patricia"
"2024-06-10","expense","20.00","ice cream",""
`
	if sb.String() != want {
		t.Errorf("CSV mismatch:\ngot:\n%s\nwant:\n%s", sb.String(), want)
	}
}

func TestWriteCSVKindFilter(t *testing.T) {
	expenses := []core.Expense{{Timestamp: 1, Amount: core.Money{Cents: 100}, Description: "e"}}
	deposits := []core.Deposit{{Timestamp: 2, Amount: core.Money{Cents: 200}, Description: "d"}}

	var sb strings.Builder
	if err := WriteCSV(&sb, expenses, deposits, core.KindDeposit, time.UTC); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header plus one deposit", len(lines))
	}
	if !strings.Contains(lines[1], `"deposit"`) {
		t.Errorf("row = %s, want deposit row", lines[1])
	}
}
