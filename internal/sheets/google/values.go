package google

import (
	"homebudget/internal/core"
)

// ItemValues lays out the flat list with its running balance. Amounts here
// and below are sent as fixed two-decimal strings and parsed by Sheets
// (USER_ENTERED), so no float rounding reaches the spreadsheet.
func ItemValues(items []core.BudgetItem) [][]any {
	out := [][]any{{"Id", "Date", "Category", "Description", "Amount", "Balance"}}
	for _, it := range items {
		out = append(out, []any{
			it.ExpenseID,
			it.Date.String(),
			it.Category,
			it.ShortDescription,
			core.FormatAmount(it.Amount),
			core.FormatAmount(it.Balance),
		})
	}
	return out
}

// MonthValues lays out one row per month with its total.
func MonthValues(groups []core.BudgetItemsByMonth) [][]any {
	out := [][]any{{"Month", "Total"}}
	for _, g := range groups {
		out = append(out, []any{g.Month, core.FormatAmount(g.Total)})
	}
	return out
}

// CategoryValues lays out one row per category with its total.
func CategoryValues(groups []core.BudgetItemsByCategory) [][]any {
	out := [][]any{{"Category", "Total"}}
	for _, g := range groups {
		out = append(out, []any{g.Category, core.FormatAmount(g.Total)})
	}
	return out
}

// PivotValues lays out one row per month, a column per category and a
// trailing Total column, which on the TOTALS row sums the category totals.
// Missing cells are empty strings.
func PivotValues(records []core.PivotRecord) [][]any {
	columns := core.PivotCategories(records)

	header := []any{"Month"}
	for _, c := range columns {
		header = append(header, c)
	}
	header = append(header, "Total")
	out := [][]any{header}

	for _, rec := range records {
		row := []any{rec.Month}
		for _, c := range columns {
			if v, ok := rec.Lookup(c); ok {
				row = append(row, core.FormatAmount(v))
			} else {
				row = append(row, "")
			}
		}
		if rec.IsTotals() {
			row = append(row, core.FormatAmount(rec.CellTotal()))
		} else {
			row = append(row, core.FormatAmount(rec.Total))
		}
		out = append(out, row)
	}
	return out
}
