package filter

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outlayhq/outlay/internal/model"
	"github.com/outlayhq/outlay/internal/service"
	"github.com/outlayhq/outlay/internal/testutil"
)

func expense(amount string, date time.Time, category string) model.Expense {
	return model.Expense{
		Amount:       decimal.RequireFromString(amount),
		Date:         date,
		CategoryName: category,
	}
}

func TestResolveRange(t *testing.T) {
	today := time.Date(2026, 8, 28, 14, 30, 0, 0, time.UTC)

	t.Run("day starts at midnight", func(t *testing.T) {
		window, ok := ResolveRange(model.PeriodDay, today)
		require.True(t, ok)
		assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), window.Start)
		assert.Equal(t, today, window.End)
	})

	t.Run("week is seven days back", func(t *testing.T) {
		window, ok := ResolveRange(model.PeriodWeek, today)
		require.True(t, ok)
		assert.Equal(t, today.AddDate(0, 0, -7), window.Start)
		assert.Equal(t, today, window.End)
	})

	t.Run("month is daysInMonth plus one back", func(t *testing.T) {
		// August has 31 days, so the window reaches 32 days back. This is
		// the documented behavior, not a calendar-month boundary.
		window, ok := ResolveRange(model.PeriodMonth, today)
		require.True(t, ok)
		assert.Equal(t, today.AddDate(0, 0, -32), window.Start)
		assert.Equal(t, today, window.End)
	})

	t.Run("month window in february", func(t *testing.T) {
		feb := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)
		window, ok := ResolveRange(model.PeriodMonth, feb)
		require.True(t, ok)
		// 2026 is not a leap year: 28 days + 1.
		assert.Equal(t, feb.AddDate(0, 0, -29), window.Start)
	})

	t.Run("year is one year back", func(t *testing.T) {
		window, ok := ResolveRange(model.PeriodYear, today)
		require.True(t, ok)
		assert.Equal(t, today.AddDate(-1, 0, 0), window.Start)
	})

	t.Run("none resolves to nothing", func(t *testing.T) {
		_, ok := ResolveRange(model.PeriodNone, today)
		assert.False(t, ok)
	})
}

func TestGroupByDayOrdering(t *testing.T) {
	day0 := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	day1 := day0.AddDate(0, 0, -1)

	expenses := []model.Expense{
		expense("25.00", day1.Add(9*time.Hour), "Transport"),
		expense("100.00", day0.Add(8*time.Hour), "Food"),
		expense("50.00", day0.Add(19*time.Hour), "Food"),
	}

	groups := GroupByDay(expenses)
	require.Len(t, groups, 2)

	// Most recent day first.
	assert.Equal(t, day0, groups[0].Day)
	assert.Equal(t, day1, groups[1].Day)

	// Within a day, most recent expense first.
	require.Len(t, groups[0].Expenses, 2)
	assert.True(t, groups[0].Expenses[0].Amount.Equal(decimal.RequireFromString("50.00")))
	assert.True(t, groups[0].Expenses[1].Amount.Equal(decimal.RequireFromString("100.00")))

	assert.True(t, groups[0].Total.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, groups[1].Total.Equal(decimal.RequireFromString("25.00")))
}

func TestGroupByCategoryScenario(t *testing.T) {
	// Food 100 + 50, Transport 25: shares are 85.71% and 14.29%, which
	// round to 86 and 14. The rounded values summing to 100 is not
	// guaranteed and not required.
	day0 := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	expenses := []model.Expense{
		expense("100", day0, "Food"),
		expense("50", day0, "Food"),
		expense("25", day0.AddDate(0, 0, -1), "Transport"),
	}

	groups := GroupByCategory(expenses, true)
	require.Len(t, groups, 2)

	assert.Equal(t, "Food", groups[0].Name)
	assert.True(t, groups[0].Total.Equal(decimal.RequireFromString("150")))
	assert.EqualValues(t, 86, groups[0].Percentage)

	assert.Equal(t, "Transport", groups[1].Name)
	assert.True(t, groups[1].Total.Equal(decimal.RequireFromString("25")))
	assert.EqualValues(t, 14, groups[1].Percentage)

	// Ascending flips the order.
	ascending := GroupByCategory(expenses, false)
	assert.Equal(t, "Transport", ascending[0].Name)
	assert.Equal(t, "Food", ascending[1].Name)
}

func TestGroupByCategoryZeroTotal(t *testing.T) {
	day := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)

	groups := GroupByCategory([]model.Expense{
		expense("0", day, "Food"),
		expense("0", day, "Transport"),
	}, true)

	require.Len(t, groups, 2)
	for _, g := range groups {
		assert.EqualValues(t, 0, g.Percentage, "zero total must never divide")
	}
}

func TestPercentagesBeforeRoundingSumToHundred(t *testing.T) {
	day := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	expenses := []model.Expense{
		expense("33.33", day, "A"),
		expense("33.33", day, "B"),
		expense("33.34", day, "C"),
	}

	total := Total(expenses)
	groups := GroupByCategory(expenses, true)

	sum := decimal.Zero
	for _, g := range groups {
		sum = sum.Add(g.Total.Mul(decimal.NewFromInt(100)).Div(total))
	}
	assert.True(t, sum.Round(6).Equal(decimal.NewFromInt(100)),
		"exact shares must sum to 100, got %s", sum)
}

func TestTotalIsExact(t *testing.T) {
	day := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	expenses := []model.Expense{
		expense("0.10", day, "A"),
		expense("0.20", day, "A"),
		expense("0.30", day, "B"),
	}

	assert.True(t, Total(expenses).Equal(decimal.RequireFromString("0.60")))
}

func seedEngineStore(t *testing.T) (*Engine, time.Time) {
	t.Helper()

	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	today := time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC)
	add := func(amount string, date time.Time, category string, icon model.Icon) {
		_, err := store.CreateExpense(ctx, testutil.User, service.ExpenseInput{
			Amount:       decimal.RequireFromString(amount),
			Date:         date,
			CategoryName: category,
			CategoryIcon: icon,
		})
		require.NoError(t, err)
	}

	add("100.00", today.Add(-2*time.Hour), "Food", model.IconFood)
	add("50.00", today.Add(-5*time.Hour), "Food", model.IconFood)
	add("25.00", today.AddDate(0, 0, -1), "Transport", model.IconTransport)
	add("75.00", today.AddDate(0, 0, -40), "Travel", model.IconTravel)

	return NewEngine(store), today
}

func TestEngineRangeSelection(t *testing.T) {
	ctx := context.Background()
	engine, today := seedEngineStore(t)

	t.Run("no filter returns everything", func(t *testing.T) {
		expenses, err := engine.Expenses(ctx, testutil.User, model.FilterState{AllCategories: true}, today)
		require.NoError(t, err)
		assert.Len(t, expenses, 4)
	})

	t.Run("week period excludes old expenses", func(t *testing.T) {
		expenses, err := engine.Expenses(ctx, testutil.User, model.FilterState{
			Period:        model.PeriodWeek,
			AllCategories: true,
		}, today)
		require.NoError(t, err)
		assert.Len(t, expenses, 3)
	})

	t.Run("explicit range wins over period", func(t *testing.T) {
		// The period alone would include three expenses; the explicit
		// range narrows it to today's two.
		state := model.FilterState{
			Period:        model.PeriodYear,
			Range:         &model.DateRange{Start: today.AddDate(0, 0, -1).Add(12 * time.Hour), End: today},
			AllCategories: true,
		}
		expenses, err := engine.Expenses(ctx, testutil.User, state, today)
		require.NoError(t, err)
		assert.Len(t, expenses, 2)
	})

	t.Run("allow-list filters by category name", func(t *testing.T) {
		expenses, err := engine.Expenses(ctx, testutil.User, model.FilterState{
			Categories: []string{"Transport"},
		}, today)
		require.NoError(t, err)
		require.Len(t, expenses, 1)
		assert.Equal(t, "Transport", expenses[0].CategoryName)
	})

	t.Run("all-categories flag bypasses the allow-list", func(t *testing.T) {
		expenses, err := engine.Expenses(ctx, testutil.User, model.FilterState{
			Categories:    []string{"Transport"},
			AllCategories: true,
		}, today)
		require.NoError(t, err)
		assert.Len(t, expenses, 4)
	})
}

func TestEngineReportIsDeterministic(t *testing.T) {
	ctx := context.Background()
	engine, today := seedEngineStore(t)

	state := model.FilterState{
		Period:         model.PeriodYear,
		SortDescending: true,
	}

	first, err := engine.Report(ctx, testutil.User, state, today)
	require.NoError(t, err)
	second, err := engine.Report(ctx, testutil.User, state, today)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEngineReportAggregates(t *testing.T) {
	ctx := context.Background()
	engine, today := seedEngineStore(t)

	report, err := engine.Report(ctx, testutil.User, model.FilterState{
		Period:         model.PeriodWeek,
		AllCategories:  true,
		SortDescending: true,
	}, today)
	require.NoError(t, err)

	require.Len(t, report.Days, 2)
	assert.True(t, report.Days[0].Total.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, report.Days[1].Total.Equal(decimal.RequireFromString("25.00")))

	require.Len(t, report.Categories, 2)
	assert.Equal(t, "Food", report.Categories[0].Name)
	assert.EqualValues(t, 86, report.Categories[0].Percentage)
	assert.Equal(t, "Transport", report.Categories[1].Name)
	assert.EqualValues(t, 14, report.Categories[1].Percentage)

	assert.True(t, report.Total.Equal(decimal.RequireFromString("175.00")))
}
