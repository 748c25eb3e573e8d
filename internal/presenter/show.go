package presenter

import (
	"context"

	"homebudget/internal/core"
)

// Reports builds the four report shapes.
type Reports interface {
	BudgetItems(ctx context.Context, q core.Query) ([]core.BudgetItem, error)
	BudgetItemsByMonth(ctx context.Context, q core.Query) ([]core.BudgetItemsByMonth, error)
	BudgetItemsByCategory(ctx context.Context, q core.Query) ([]core.BudgetItemsByCategory, error)
	BudgetDictionaryByCategoryAndMonth(ctx context.Context, q core.Query) ([]core.PivotRecord, error)
}

// Show builds the shape sel asks for and hands it to d. Nothing reaches d
// when the report fails.
func Show(ctx context.Context, src Reports, sel Selection, d Display) error {
	switch sel.Shape() {
	case ShapePivot:
		records, err := src.BudgetDictionaryByCategoryAndMonth(ctx, sel.Query)
		if err != nil {
			return err
		}
		d.ShowBudgetItemsByCategoryAndMonth(records)
	case ShapeCategory:
		groups, err := src.BudgetItemsByCategory(ctx, sel.Query)
		if err != nil {
			return err
		}
		d.ShowBudgetItemsByCategory(groups)
	case ShapeMonth:
		groups, err := src.BudgetItemsByMonth(ctx, sel.Query)
		if err != nil {
			return err
		}
		d.ShowBudgetItemsByMonth(groups)
	default:
		items, err := src.BudgetItems(ctx, sel.Query)
		if err != nil {
			return err
		}
		d.ShowBudgetItems(items)
	}
	return nil
}
