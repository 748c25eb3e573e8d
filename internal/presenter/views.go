package presenter

import (
	"fmt"

	"homebudget/internal/core"
)

// MainView is the window that owns the category and expense forms.
// Positions passed to the *AddError methods index the offending inputs in
// argument order of the presenter call (0 based).
type MainView interface {
	PopulateCategories(categories []core.Category)
	ShowError(msg string)
	ShowExpensesAddError(msg string, positions []int)
	ShowCategoriesAddError(msg string, positions []int)
	ClearCategoryForm()
	ClearExpenseForm()
	SuccessfullyAddedCategory(msg string)
	SuccessfullyAddedExpense(msg string)
	UpdateBudgetItem(item core.BudgetItem)
}

// EditView is the dialog used to change an existing expense.
type EditView interface {
	DisplayEditFail(msg string)
	IndicateSuccessfulEdit()
}

// Display receives exactly one report shape per query.
type Display interface {
	ShowBudgetItems(items []core.BudgetItem)
	ShowBudgetItemsByMonth(groups []core.BudgetItemsByMonth)
	ShowBudgetItemsByCategory(groups []core.BudgetItemsByCategory)
	ShowBudgetItemsByCategoryAndMonth(records []core.PivotRecord)
}

// Selection is what the user asked to see: grouping toggles plus the query.
type Selection struct {
	GroupByMonth    bool
	GroupByCategory bool
	Query           core.Query
}

// Shape names, one per report the Display can show.
const (
	ShapeItems    = "items"
	ShapeMonth    = "month"
	ShapeCategory = "category"
	ShapePivot    = "pivot"
)

// Shape names the report this selection produces.
func (s Selection) Shape() string {
	switch {
	case s.GroupByMonth && s.GroupByCategory:
		return ShapePivot
	case s.GroupByCategory:
		return ShapeCategory
	case s.GroupByMonth:
		return ShapeMonth
	default:
		return ShapeItems
	}
}

// SelectionFor is the inverse of Selection.Shape. An empty shape means items.
func SelectionFor(shape string, q core.Query) (Selection, error) {
	sel := Selection{Query: q}
	switch shape {
	case ShapeItems, "":
	case ShapeMonth:
		sel.GroupByMonth = true
	case ShapeCategory:
		sel.GroupByCategory = true
	case ShapePivot:
		sel.GroupByMonth = true
		sel.GroupByCategory = true
	default:
		return Selection{}, fmt.Errorf("unknown report shape %q", shape)
	}
	return sel, nil
}
