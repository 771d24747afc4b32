// Package filter turns a stored expense set and a FilterState into
// display-ready aggregates: per-day groups and per-category sums with
// percentages. The transformation is pure and deterministic; the engine's
// only dependency is the store's read API.
package filter

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/outlayhq/outlay/internal/identity"
	"github.com/outlayhq/outlay/internal/model"
)

var oneHundred = decimal.NewFromInt(100)

// ExpenseReader is the slice of the store the engine consumes.
type ExpenseReader interface {
	ListAll(ctx context.Context, user identity.UserContext) ([]model.Expense, error)
	ListInRange(ctx context.Context, user identity.UserContext, start, end time.Time) ([]model.Expense, error)
}

// DayGroup is one calendar day's expenses, most recent first.
type DayGroup struct {
	Day      time.Time
	Expenses []model.Expense
	Total    decimal.Decimal
}

// CategoryGroup is one category's expenses with its share of the total.
type CategoryGroup struct {
	Name       string
	Expenses   []model.Expense
	Total      decimal.Decimal
	Percentage int64
}

// Report bundles the aggregates for one filter application.
type Report struct {
	Days       []DayGroup
	Categories []CategoryGroup
	Total      decimal.Decimal
}

// Engine post-processes store data into grouped, sorted view data.
type Engine struct {
	store ExpenseReader
}

// NewEngine creates an engine reading from the given store.
func NewEngine(store ExpenseReader) *Engine {
	return &Engine{store: store}
}

// ResolveRange computes the [start, end] window for a relative period
// anchored at today. The second return value is false for PeriodNone.
//
// The month window is daysInMonth(today)+1 days back from today rather than
// the first calendar day of the month. That matches the behavior users have
// relied on; changing it to calendar-month semantics needs a deliberate
// decision, not a drive-by fix.
func ResolveRange(period model.Period, today time.Time) (model.DateRange, bool) {
	switch period {
	case model.PeriodDay:
		return model.DateRange{Start: startOfDay(today), End: today}, true
	case model.PeriodWeek:
		return model.DateRange{Start: today.AddDate(0, 0, -7), End: today}, true
	case model.PeriodMonth:
		days := daysInMonth(today) + 1
		return model.DateRange{Start: today.AddDate(0, 0, -days), End: today}, true
	case model.PeriodYear:
		return model.DateRange{Start: today.AddDate(-1, 0, 0), End: today}, true
	default:
		return model.DateRange{}, false
	}
}

// Expenses returns the expense set selected by state: the range query when a
// date window is active, the full set otherwise, then the category
// allow-list unless the all-categories flag bypasses it.
func (e *Engine) Expenses(ctx context.Context, user identity.UserContext, state model.FilterState, today time.Time) ([]model.Expense, error) {
	var (
		expenses []model.Expense
		err      error
	)

	switch {
	case state.Range != nil:
		// An explicit range always wins over a relative period.
		expenses, err = e.store.ListInRange(ctx, user, state.Range.Start, state.Range.End)
	case state.Period != model.PeriodNone:
		window, _ := ResolveRange(state.Period, today)
		expenses, err = e.store.ListInRange(ctx, user, window.Start, window.End)
	default:
		expenses, err = e.store.ListAll(ctx, user)
	}
	if err != nil {
		return nil, err
	}

	return filterByCategory(expenses, state), nil
}

// Report runs the full pipeline: select, group by day, group by category.
func (e *Engine) Report(ctx context.Context, user identity.UserContext, state model.FilterState, today time.Time) (*Report, error) {
	expenses, err := e.Expenses(ctx, user, state, today)
	if err != nil {
		return nil, err
	}

	return &Report{
		Days:       GroupByDay(expenses),
		Categories: GroupByCategory(expenses, state.SortDescending),
		Total:      Total(expenses),
	}, nil
}

// GroupByDay buckets expenses by calendar day (local start-of-day
// truncation). Days are sorted most recent first, and each day's expenses
// are sorted by time descending. This ordering is a display contract.
func GroupByDay(expenses []model.Expense) []DayGroup {
	index := make(map[time.Time]int)
	var groups []DayGroup

	for _, exp := range expenses {
		day := startOfDay(exp.Date)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, DayGroup{Day: day, Total: decimal.Zero})
		}
		groups[i].Expenses = append(groups[i].Expenses, exp)
		groups[i].Total = groups[i].Total.Add(exp.Amount)
	}

	for i := range groups {
		exps := groups[i].Expenses
		sort.SliceStable(exps, func(a, b int) bool {
			return exps[a].Date.After(exps[b].Date)
		})
	}

	sort.SliceStable(groups, func(a, b int) bool {
		return groups[a].Day.After(groups[b].Day)
	})

	return groups
}

// GroupByCategory buckets expenses by category name, computes each bucket's
// exact decimal sum and its rounded percentage of the total, and orders the
// buckets by sum. Ties keep insertion order.
func GroupByCategory(expenses []model.Expense, descending bool) []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup

	for _, exp := range expenses {
		name := exp.CategoryName
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, CategoryGroup{Name: name, Total: decimal.Zero})
		}
		groups[i].Expenses = append(groups[i].Expenses, exp)
		groups[i].Total = groups[i].Total.Add(exp.Amount)
	}

	total := Total(expenses)
	for i := range groups {
		groups[i].Percentage = percentage(groups[i].Total, total)
	}

	sort.SliceStable(groups, func(a, b int) bool {
		if descending {
			return groups[a].Total.GreaterThan(groups[b].Total)
		}
		return groups[a].Total.LessThan(groups[b].Total)
	})

	return groups
}

// Total is the exact decimal sum over the expense set.
func Total(expenses []model.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, exp := range expenses {
		total = total.Add(exp.Amount)
	}
	return total
}

// percentage computes 100*part/total rounded half away from zero, and 0 for
// a zero total (never divide by zero).
func percentage(part, total decimal.Decimal) int64 {
	if total.IsZero() {
		return 0
	}
	return part.Mul(oneHundred).Div(total).Round(0).IntPart()
}

// filterByCategory applies the allow-list. The all-categories flag bypasses
// filtering entirely regardless of the allow-list contents, as does an empty
// list.
func filterByCategory(expenses []model.Expense, state model.FilterState) []model.Expense {
	if state.AllCategories || len(state.Categories) == 0 {
		return expenses
	}

	allowed := make(map[string]struct{}, len(state.Categories))
	for _, name := range state.Categories {
		allowed[name] = struct{}{}
	}

	filtered := make([]model.Expense, 0, len(expenses))
	for _, exp := range expenses {
		if _, ok := allowed[exp.CategoryName]; ok {
			filtered = append(filtered, exp)
		}
	}
	return filtered
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysInMonth(t time.Time) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
}
