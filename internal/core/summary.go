package core

import (
	"slices"

	"github.com/shopspring/decimal"
)

// TotalsMonth is the Month value of the trailing pivot record.
const TotalsMonth = "TOTALS"

// Query selects the expenses a report is built from. Nil bounds are open.
type Query struct {
	Start            *Date
	End              *Date
	FilterByCategory bool
	CategoryID       int // ignored unless FilterByCategory
}

// BudgetItem is one expense joined with its category and annotated with the
// running balance of the result it belongs to.
type BudgetItem struct {
	CategoryID       int             `json:"categoryId"`
	ExpenseID        int             `json:"expenseId"`
	Date             Date            `json:"date"`
	Category         string          `json:"category"`
	ShortDescription string          `json:"shortDescription"`
	Amount           decimal.Decimal `json:"amount"`
	Balance          decimal.Decimal `json:"balance"`
}

// BudgetItemsByMonth groups budget items by "YYYY/MM".
type BudgetItemsByMonth struct {
	Month   string          `json:"month"`
	Total   decimal.Decimal `json:"total"`
	Details []BudgetItem    `json:"details"`
}

// BudgetItemsByCategory groups budget items by category name.
type BudgetItemsByCategory struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Details  []BudgetItem    `json:"details"`
}

// PivotCell is one month x category intersection.
type PivotCell struct {
	Category string          `json:"category"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Details  []BudgetItem    `json:"details,omitempty"`
}

// PivotRecord is one row of the month x category cross-tab. The trailing
// record has Month == TotalsMonth and carries per-category grand totals.
type PivotRecord struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
	Cells []PivotCell     `json:"cells"`
}

// Lookup returns the subtotal for a category, false when the record has no
// cell for it.
func (r PivotRecord) Lookup(category string) (decimal.Decimal, bool) {
	for _, c := range r.Cells {
		if c.Category == category {
			return c.Subtotal, true
		}
	}
	return decimal.Zero, false
}

// IsTotals reports whether this is the trailing grand-total record.
func (r PivotRecord) IsTotals() bool {
	return r.Month == TotalsMonth
}

// CellTotal adds up the subtotals of every cell in the record.
func (r PivotRecord) CellTotal() decimal.Decimal {
	amounts := make([]decimal.Decimal, len(r.Cells))
	for i, c := range r.Cells {
		amounts[i] = c.Subtotal
	}
	return Sum(amounts...)
}

// PivotCategories returns every category name that has a cell in records,
// sorted by name. Tabular renderers use it as the column list.
func PivotCategories(records []PivotRecord) []string {
	var cols []string
	for _, rec := range records {
		for _, c := range rec.Cells {
			if !slices.Contains(cols, c.Category) {
				cols = append(cols, c.Category)
			}
		}
	}
	slices.Sort(cols)
	return cols
}
