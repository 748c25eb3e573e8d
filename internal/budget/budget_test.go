package budget

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homebudget/internal/core"
	"homebudget/internal/storage/memory"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func datePtr(y, m, d int) *core.Date {
	dt := core.NewDate(y, m, d)
	return &dt
}

// hatScarfBudget builds categories {9: Credit Card, 10: Clothes} and the four
// hat/scarf expenses used across these tests.
func hatScarfBudget(t *testing.T) *Budget {
	t.Helper()
	ctx := context.Background()
	store := memory.New(true)

	cats, err := store.Categories().List(ctx)
	require.NoError(t, err)
	for _, c := range cats {
		if c.ID != 9 && c.ID != 10 {
			require.NoError(t, store.Categories().Delete(ctx, c.ID))
		}
	}

	b := New(store.Categories(), store.Expenses())
	for _, e := range []struct {
		date   core.Date
		cat    int
		amount int64
		desc   string
	}{
		{core.NewDate(2018, 1, 10), 10, 10, "hat (credit)"},
		{core.NewDate(2018, 1, 11), 9, -10, "hat"},
		{core.NewDate(2019, 1, 10), 10, 15, "scarf (credit)"},
		{core.NewDate(2020, 1, 10), 9, -15, "scarf"},
	} {
		_, err := b.AddExpense(ctx, e.date, e.cat, dec(e.amount), e.desc)
		require.NoError(t, err)
	}
	return b
}

func amounts[T any](items []T, f func(T) decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(f(it))
	}
	return total
}

func TestBudgetItems_Balances(t *testing.T) {
	b := hatScarfBudget(t)

	items, err := b.BudgetItems(context.Background(), core.Query{})
	require.NoError(t, err)
	require.Len(t, items, 4)

	wantBalances := []int64{10, 0, 15, 0}
	for i, item := range items {
		assert.Equal(t, i+1, item.ExpenseID)
		assert.True(t, dec(wantBalances[i]).Equal(item.Balance), "balance[%d] = %s", i, item.Balance)
	}
	assert.Equal(t, "Clothes", items[0].Category)
	assert.Equal(t, "Credit Card", items[1].Category)
	assert.Equal(t, "hat", items[1].ShortDescription)
}

func TestBudgetItems_FilterAndRange(t *testing.T) {
	b := hatScarfBudget(t)
	ctx := context.Background()

	items, err := b.BudgetItems(ctx, core.Query{FilterByCategory: true, CategoryID: 9})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, dec(-10).Equal(items[0].Balance))
	assert.True(t, dec(-25).Equal(items[1].Balance))

	// Inclusive on both ends.
	items, err = b.BudgetItems(ctx, core.Query{Start: datePtr(2018, 1, 11), End: datePtr(2019, 1, 10)})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].ExpenseID)
	assert.Equal(t, 3, items[1].ExpenseID)
	assert.True(t, dec(-10).Equal(items[0].Balance), "balance restarts at zero for each query")

	// Category id is ignored without the flag.
	items, err = b.BudgetItems(ctx, core.Query{CategoryID: 9})
	require.NoError(t, err)
	assert.Len(t, items, 4)
}

func TestBudgetItems_TiesOrderedByExpenseID(t *testing.T) {
	ctx := context.Background()
	store := memory.New(true)
	b := New(store.Categories(), store.Expenses())

	day := core.NewDate(2021, 3, 3)
	_, err := b.AddExpense(ctx, core.NewDate(2021, 3, 4), 1, dec(1), "later")
	require.NoError(t, err)
	_, err = b.AddExpense(ctx, day, 2, dec(2), "first same day")
	require.NoError(t, err)
	_, err = b.AddExpense(ctx, day, 3, dec(3), "second same day")
	require.NoError(t, err)

	items, err := b.BudgetItems(ctx, core.Query{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []int{2, 3, 1}, []int{items[0].ExpenseID, items[1].ExpenseID, items[2].ExpenseID})
}

func TestBudgetItemsByMonth(t *testing.T) {
	b := hatScarfBudget(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		query  core.Query
		months []string
		totals []int64
	}{
		{
			name:   "filtered to clothes",
			query:  core.Query{FilterByCategory: true, CategoryID: 10},
			months: []string{"2018/01", "2019/01"},
			totals: []int64{10, 15},
		},
		{
			name:   "start bound, category ignored",
			query:  core.Query{Start: datePtr(2019, 1, 1), CategoryID: 9},
			months: []string{"2019/01", "2020/01"},
			totals: []int64{15, -15},
		},
		{
			name:   "everything",
			query:  core.Query{},
			months: []string{"2018/01", "2019/01", "2020/01"},
			totals: []int64{0, 15, -15},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups, err := b.BudgetItemsByMonth(ctx, tt.query)
			require.NoError(t, err)
			require.Len(t, groups, len(tt.months))
			for i, g := range groups {
				assert.Equal(t, tt.months[i], g.Month)
				assert.True(t, dec(tt.totals[i]).Equal(g.Total), "%s total = %s", g.Month, g.Total)
				detailSum := amounts(g.Details, func(it core.BudgetItem) decimal.Decimal { return it.Amount })
				assert.True(t, g.Total.Equal(detailSum), "%s details do not add up", g.Month)
			}
		})
	}
}

func TestBudgetItemsByMonth_DetailsClippedToRange(t *testing.T) {
	b := hatScarfBudget(t)
	ctx := context.Background()

	groups, err := b.BudgetItemsByMonth(ctx, core.Query{Start: datePtr(2018, 1, 11)})
	require.NoError(t, err)
	require.NotEmpty(t, groups)
	assert.Equal(t, "2018/01", groups[0].Month)
	require.Len(t, groups[0].Details, 1)
	assert.Equal(t, 2, groups[0].Details[0].ExpenseID)
}

func TestBudgetItemsByCategory(t *testing.T) {
	b := hatScarfBudget(t)
	ctx := context.Background()

	groups, err := b.BudgetItemsByCategory(ctx, core.Query{})
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "Clothes", groups[0].Category, "first seen when scanning by date")
	assert.True(t, dec(25).Equal(groups[0].Total))
	assert.Len(t, groups[0].Details, 2)
	assert.True(t, dec(25).Equal(groups[0].Details[1].Balance))

	assert.Equal(t, "Credit Card", groups[1].Category)
	assert.True(t, dec(-25).Equal(groups[1].Total))

	groups, err = b.BudgetItemsByCategory(ctx, core.Query{FilterByCategory: true, CategoryID: 9})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Credit Card", groups[0].Category)
}

func TestBudgetDictionaryByCategoryAndMonth(t *testing.T) {
	b := hatScarfBudget(t)

	records, err := b.BudgetDictionaryByCategoryAndMonth(context.Background(), core.Query{})
	require.NoError(t, err)
	require.Len(t, records, 4)

	first := records[0]
	assert.Equal(t, "2018/01", first.Month)
	require.Len(t, first.Cells, 2)
	assert.Equal(t, "Clothes", first.Cells[0].Category, "cells sorted by name")
	assert.Equal(t, "Credit Card", first.Cells[1].Category)
	assert.Len(t, first.Cells[0].Details, 1)

	totals := records[len(records)-1]
	assert.True(t, totals.IsTotals())
	require.Len(t, totals.Cells, 2)
	clothes, ok := totals.Lookup("Clothes")
	require.True(t, ok)
	assert.True(t, dec(25).Equal(clothes))
	credit, ok := totals.Lookup("Credit Card")
	require.True(t, ok)
	assert.True(t, dec(-25).Equal(credit))

	_, ok = totals.Lookup("Food")
	assert.False(t, ok, "categories without activity are left out")
}

func TestBudgetDictionaryByCategoryAndMonth_TotalsMatchByCategory(t *testing.T) {
	b := hatScarfBudget(t)
	ctx := context.Background()
	q := core.Query{Start: datePtr(2018, 1, 11)}

	records, err := b.BudgetDictionaryByCategoryAndMonth(ctx, q)
	require.NoError(t, err)
	groups, err := b.BudgetItemsByCategory(ctx, q)
	require.NoError(t, err)

	totals := records[len(records)-1]
	require.Len(t, totals.Cells, len(groups))
	for _, g := range groups {
		got, ok := totals.Lookup(g.Category)
		require.True(t, ok, g.Category)
		assert.True(t, g.Total.Equal(got), "%s: %s != %s", g.Category, got, g.Total)
	}
}

func TestBudgetDictionaryByCategoryAndMonth_CellsSortedByName(t *testing.T) {
	store := memory.New(true)
	b := New(store.Categories(), store.Expenses())
	ctx := context.Background()

	// Default ids: 1 Utilities, 10 Clothes, 14 Eating Out.
	for _, e := range []struct {
		day    int
		cat    int
		amount int64
	}{
		{1, 14, -30},
		{2, 1, -80},
		{5, 10, -45},
		{20, 14, -12},
	} {
		_, err := b.AddExpense(ctx, core.NewDate(2024, 3, e.day), e.cat, dec(e.amount), "x")
		require.NoError(t, err)
	}

	records, err := b.BudgetDictionaryByCategoryAndMonth(ctx, core.Query{})
	require.NoError(t, err)
	require.Len(t, records, 2)

	var names []string
	for _, c := range records[0].Cells {
		names = append(names, c.Category)
	}
	assert.Equal(t, []string{"Clothes", "Eating Out", "Utilities"}, names,
		"cells follow category name, not first appearance")
	eatingOut, ok := records[0].Lookup("Eating Out")
	require.True(t, ok)
	assert.True(t, dec(-42).Equal(eatingOut))
	assert.Len(t, records[0].Cells[1].Details, 2)

	names = names[:0]
	for _, c := range records[1].Cells {
		names = append(names, c.Category)
	}
	assert.Equal(t, []string{"Utilities", "Clothes", "Eating Out"}, names,
		"TOTALS cells follow category id order")
}

func TestBudgetDictionaryByCategoryAndMonth_Empty(t *testing.T) {
	store := memory.New(true)
	b := New(store.Categories(), store.Expenses())

	records, err := b.BudgetDictionaryByCategoryAndMonth(context.Background(), core.Query{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsTotals())
	assert.Empty(t, records[0].Cells)
}

func TestReconciliation(t *testing.T) {
	b := hatScarfBudget(t)
	ctx := context.Background()

	queries := []core.Query{
		{},
		{FilterByCategory: true, CategoryID: 10},
		{Start: datePtr(2018, 1, 11), End: datePtr(2019, 12, 31)},
		{Start: datePtr(2030, 1, 1)},
	}
	for _, q := range queries {
		items, err := b.BudgetItems(ctx, q)
		require.NoError(t, err)
		months, err := b.BudgetItemsByMonth(ctx, q)
		require.NoError(t, err)
		cats, err := b.BudgetItemsByCategory(ctx, q)
		require.NoError(t, err)

		want := amounts(items, func(it core.BudgetItem) decimal.Decimal { return it.Amount })
		gotMonths := amounts(months, func(m core.BudgetItemsByMonth) decimal.Decimal { return m.Total })
		gotCats := amounts(cats, func(c core.BudgetItemsByCategory) decimal.Decimal { return c.Total })
		assert.True(t, want.Equal(gotMonths), "months %s != items %s", gotMonths, want)
		assert.True(t, want.Equal(gotCats), "categories %s != items %s", gotCats, want)

		for i, it := range items {
			prefix := amounts(items[:i+1], func(it core.BudgetItem) decimal.Decimal { return it.Amount })
			assert.True(t, prefix.Equal(it.Balance))
		}
	}
}

func TestOrphanExpensesExcluded(t *testing.T) {
	b := hatScarfBudget(t)
	ctx := context.Background()

	_, err := b.AddExpense(ctx, core.NewDate(2018, 1, 15), 404, dec(1000), "orphan")
	require.NoError(t, err)
	require.NoError(t, b.DeleteCategory(ctx, 9))

	items, err := b.BudgetItems(ctx, core.Query{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.Equal(t, 10, it.CategoryID)
	}

	records, err := b.BudgetDictionaryByCategoryAndMonth(ctx, core.Query{})
	require.NoError(t, err)
	totals := records[len(records)-1]
	_, ok := totals.Lookup("Credit Card")
	assert.False(t, ok)

	all, err := b.Expenses(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 5, "orphans stay in the store")
}

func TestDeleteKeepsIDs(t *testing.T) {
	b := hatScarfBudget(t)
	ctx := context.Background()

	require.NoError(t, b.DeleteExpense(ctx, 3))
	all, err := b.Expenses(ctx)
	require.NoError(t, err)
	ids := make([]int, len(all))
	for i, e := range all {
		ids[i] = e.ID
	}
	assert.Equal(t, []int{1, 2, 4}, ids)

	e, err := b.AddExpense(ctx, core.NewDate(2021, 1, 1), 9, dec(1), "new")
	require.NoError(t, err)
	assert.Equal(t, 5, e.ID)
}

type failingExpenses struct {
	ExpenseStore
}

func (failingExpenses) List(context.Context) ([]core.Expense, error) {
	return nil, core.Persistence("list expenses", errors.New("disk I/O error"))
}

func TestReadFailurePropagates(t *testing.T) {
	store := memory.New(true)
	b := New(store.Categories(), failingExpenses{store.Expenses()})

	_, err := b.BudgetItems(context.Background(), core.Query{})
	require.Error(t, err)
	assert.True(t, core.IsPersistence(err))

	_, err = b.BudgetDictionaryByCategoryAndMonth(context.Background(), core.Query{})
	assert.True(t, core.IsPersistence(err))
}
