// Package pipeline produces the ordered, date-grouped view of transactions
// that every listing surface renders. It never mutates its inputs and has no
// error paths: empty input yields an empty group list.
package pipeline

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/vctrubio/summer-expense-tracker/internal/core"
)

// SortOrder selects how date groups are ordered. Records within a group stay
// timestamp-descending regardless.
type SortOrder string

const (
	// SortDate orders groups newest-first. This is the default.
	SortDate SortOrder = "date"
	// SortHighest orders groups by that day's total expense amount, descending.
	SortHighest SortOrder = "highest"
	// SortLowest orders groups by that day's total expense amount, ascending.
	SortLowest SortOrder = "lowest"
)

// Filter narrows and orders the transaction stream. Zero values mean "no
// filtering": both kinds, all owners, newest-first.
type Filter struct {
	Kind  core.TxKind // "" keeps both kinds
	Owner string      // "" keeps all owners
	Sort  SortOrder   // "" defaults to SortDate

	// Start/End bound timestamps inclusively when both are set. Range
	// filtering is usually pushed down to the store query; applying it here
	// is semantically identical.
	Start *int64
	End   *int64
}

// Record is one transaction tagged with its kind. Owner holds the destination
// for expenses and the source for deposits.
type Record struct {
	ID          string      `json:"id"`
	Kind        core.TxKind `json:"kind"`
	Timestamp   int64       `json:"timestamp"`
	Amount      core.Money  `json:"amount"`
	Description string      `json:"description"`
	Owner       string      `json:"owner,omitempty"`
}

// Header is the derived display metadata for one date group.
type Header struct {
	DayOfWeek string `json:"day_of_week"` // "Monday"
	MonthDay  string `json:"month_day"`   // "Jan 2"
	Relative  string `json:"relative"`    // "Today", "Yesterday", "3 days ago", "In 2 days"
}

// Group is one calendar day's transactions, newest-first.
type Group struct {
	Date         time.Time  `json:"date"` // midnight in the caller's location
	Header       Header     `json:"header"`
	ExpenseTotal core.Money `json:"expense_total"`
	Records      []Record   `json:"records"`
}

// Build tags, filters, sorts and groups the raw store records. Calendar days
// and relative labels are derived in now's location; now is the caller's
// current time.
//
// Build is deterministic and idempotent: identical inputs produce identical
// output on every call.
func Build(expenses []core.Expense, deposits []core.Deposit, f Filter, now time.Time) []Group {
	if f.Sort == "" {
		f.Sort = SortDate
	}
	loc := now.Location()

	records := make([]Record, 0, len(expenses)+len(deposits))
	for _, e := range expenses {
		records = append(records, Record{
			ID:          e.ID,
			Kind:        core.KindExpense,
			Timestamp:   e.Timestamp,
			Amount:      e.Amount,
			Description: e.Description,
			Owner:       e.Destination,
		})
	}
	for _, d := range deposits {
		records = append(records, Record{
			ID:          d.ID,
			Kind:        core.KindDeposit,
			Timestamp:   d.Timestamp,
			Amount:      d.Amount,
			Description: d.Description,
			Owner:       d.Source,
		})
	}

	filtered := records[:0:0]
	for _, r := range records {
		if !matches(r, f) {
			continue
		}
		filtered = append(filtered, r)
	}

	// Timestamp-descending first: this fixes the record order inside every
	// group before any group-level reordering.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp > filtered[j].Timestamp
	})

	var groups []Group
	index := make(map[time.Time]int)
	for _, r := range filtered {
		day := dayOf(r.Timestamp, loc)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, Group{Date: day, Header: headerFor(day, now)})
		}
		groups[i].Records = append(groups[i].Records, r)
		if r.Kind == core.KindExpense {
			groups[i].ExpenseTotal = groups[i].ExpenseTotal.Add(r.Amount)
		}
	}

	switch f.Sort {
	case SortHighest:
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].ExpenseTotal.Cents > groups[j].ExpenseTotal.Cents
		})
	case SortLowest:
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].ExpenseTotal.Cents < groups[j].ExpenseTotal.Cents
		})
	default:
		// Groups were built from a timestamp-descending walk, so they are
		// already newest-first.
	}

	return groups
}

// Totals sums expense and deposit amounts across all groups.
func Totals(groups []Group) (expenses, deposits core.Money) {
	for _, g := range groups {
		for _, r := range g.Records {
			switch r.Kind {
			case core.KindExpense:
				expenses = expenses.Add(r.Amount)
			case core.KindDeposit:
				deposits = deposits.Add(r.Amount)
			}
		}
	}
	return expenses, deposits
}

func matches(r Record, f Filter) bool {
	if f.Start != nil && f.End != nil {
		if r.Timestamp < *f.Start || r.Timestamp > *f.End {
			return false
		}
	}
	if f.Kind != "" && r.Kind != f.Kind {
		return false
	}
	if f.Owner != "" && r.Owner != f.Owner {
		// Records with no owner never match a non-empty owner filter.
		return false
	}
	return true
}

// dayOf truncates an epoch-millis timestamp to midnight of its represented
// local date.
func dayOf(ms int64, loc *time.Location) time.Time {
	t := core.MillisToTime(ms, loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func headerFor(day time.Time, now time.Time) Header {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	diffDays := int(math.Round(day.Sub(today).Hours() / 24))

	return Header{
		DayOfWeek: day.Format("Monday"),
		MonthDay:  day.Format("Jan 2"),
		Relative:  relativeLabel(diffDays),
	}
}

func relativeLabel(diffDays int) string {
	switch {
	case diffDays == 0:
		return "Today"
	case diffDays == 1:
		return "Tomorrow"
	case diffDays == -1:
		return "Yesterday"
	case diffDays < 0:
		return strconv.Itoa(-diffDays) + " days ago"
	default:
		return "In " + strconv.Itoa(diffDays) + " days"
	}
}
