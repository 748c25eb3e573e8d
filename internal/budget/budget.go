// Package budget joins expenses to categories and reshapes the result into
// the report shapes shown to the user: a flat list with running balances,
// totals by month, totals by category and the month x category pivot.
//
// Every shape is computed from a fresh snapshot of both stores, so the
// numbers always reconcile with one another for the same query.
package budget

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"homebudget/internal/core"
)

// CategoryStore is implemented by storage.CategoryStore and
// memory.CategoryStore.
type CategoryStore interface {
	Add(ctx context.Context, description string, typ core.CategoryType) (core.Category, error)
	Delete(ctx context.Context, id int) error
	Update(ctx context.Context, id int, description string, typ core.CategoryType) (int64, error)
	Get(ctx context.Context, id int) (core.Category, error)
	List(ctx context.Context) ([]core.Category, error)
	ResetToDefaults(ctx context.Context) error
}

// ExpenseStore is implemented by storage.ExpenseStore and
// memory.ExpenseStore.
type ExpenseStore interface {
	Add(ctx context.Context, date core.Date, categoryID int, amount decimal.Decimal, description string) (core.Expense, error)
	Delete(ctx context.Context, id int) error
	Update(ctx context.Context, id int, date core.Date, categoryID int, amount decimal.Decimal, description string) (int64, error)
	Get(ctx context.Context, id int) (core.Expense, error)
	List(ctx context.Context) ([]core.Expense, error)
}

// Budget is the single entry point to one budget file. Calls are serialised:
// each store or report call completes before the next one starts.
type Budget struct {
	mu         sync.Mutex
	categories CategoryStore
	expenses   ExpenseStore
}

func New(categories CategoryStore, expenses ExpenseStore) *Budget {
	return &Budget{categories: categories, expenses: expenses}
}

func (b *Budget) Categories(ctx context.Context) ([]core.Category, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.categories.List(ctx)
}

func (b *Budget) Category(ctx context.Context, id int) (core.Category, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.categories.Get(ctx, id)
}

func (b *Budget) AddCategory(ctx context.Context, description string, typ core.CategoryType) (core.Category, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.categories.Add(ctx, description, typ)
}

func (b *Budget) UpdateCategory(ctx context.Context, id int, description string, typ core.CategoryType) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.categories.Update(ctx, id, description, typ)
}

// DeleteCategory removes the category only. Expenses pointing at it stay in
// the store and drop out of every report.
func (b *Budget) DeleteCategory(ctx context.Context, id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.categories.Delete(ctx, id)
}

func (b *Budget) ResetCategories(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.categories.ResetToDefaults(ctx)
}

func (b *Budget) Expenses(ctx context.Context) ([]core.Expense, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.expenses.List(ctx)
}

func (b *Budget) Expense(ctx context.Context, id int) (core.Expense, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.expenses.Get(ctx, id)
}

func (b *Budget) AddExpense(ctx context.Context, date core.Date, categoryID int, amount decimal.Decimal, description string) (core.Expense, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.expenses.Add(ctx, date, categoryID, amount, description)
}

func (b *Budget) UpdateExpense(ctx context.Context, id int, date core.Date, categoryID int, amount decimal.Decimal, description string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.expenses.Update(ctx, id, date, categoryID, amount, description)
}

func (b *Budget) DeleteExpense(ctx context.Context, id int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.expenses.Delete(ctx, id)
}

// BudgetItems returns the joined, filtered expenses ordered by date (ties by
// expense id) with a running balance starting from zero.
func (b *Budget) BudgetItems(ctx context.Context, q core.Query) ([]core.BudgetItem, error) {
	s, err := b.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.items(q), nil
}

// BudgetItemsByMonth groups BudgetItems by "YYYY/MM", oldest month first.
// Each month's Details cover its calendar days narrowed to the query's
// Start and End, so a partially covered month lists only the items in range.
func (b *Budget) BudgetItemsByMonth(ctx context.Context, q core.Query) ([]core.BudgetItemsByMonth, error) {
	s, err := b.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.byMonth(q), nil
}

// BudgetItemsByCategory groups BudgetItems by category, in the order each
// category first shows up when scanning by date.
func (b *Budget) BudgetItemsByCategory(ctx context.Context, q core.Query) ([]core.BudgetItemsByCategory, error) {
	s, err := b.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.byCategory(q), nil
}

// BudgetDictionaryByCategoryAndMonth returns one record per month with a cell
// per category, followed by a TOTALS record.
func (b *Budget) BudgetDictionaryByCategoryAndMonth(ctx context.Context, q core.Query) ([]core.PivotRecord, error) {
	s, err := b.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.pivot(q), nil
}

func (b *Budget) snapshot(ctx context.Context) (*snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cats, err := b.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	exps, err := b.expenses.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	return newSnapshot(cats, exps), nil
}
