package budget

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"homebudget/internal/core"
)

// Open query bounds are replaced by these dates so a single inclusive range
// check always applies.
var (
	MinDate = core.NewDate(1900, 1, 1)
	MaxDate = core.NewDate(2500, 1, 1)
)

type snapshot struct {
	categories []core.Category
	byID       map[int]core.Category
	expenses   []core.Expense
}

func newSnapshot(cats []core.Category, exps []core.Expense) *snapshot {
	byID := make(map[int]core.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	return &snapshot{categories: cats, byID: byID, expenses: exps}
}

func bounds(q core.Query) (core.Date, core.Date) {
	start, end := MinDate, MaxDate
	if q.Start != nil {
		start = *q.Start
	}
	if q.End != nil {
		end = *q.End
	}
	return start, end
}

func (s *snapshot) items(q core.Query) []core.BudgetItem {
	start, end := bounds(q)

	out := make([]core.BudgetItem, 0, len(s.expenses))
	for _, e := range s.expenses {
		cat, ok := s.byID[e.CategoryID]
		if !ok {
			continue
		}
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		if q.FilterByCategory && e.CategoryID != q.CategoryID {
			continue
		}
		out = append(out, core.BudgetItem{
			CategoryID:       cat.ID,
			ExpenseID:        e.ID,
			Date:             e.Date,
			Category:         cat.Description,
			ShortDescription: e.Description,
			Amount:           e.Amount,
		})
	}

	slices.SortStableFunc(out, func(a, b core.BudgetItem) int {
		if c := a.Date.Compare(b.Date.Time); c != 0 {
			return c
		}
		return cmp.Compare(a.ExpenseID, b.ExpenseID)
	})

	balance := decimal.Zero
	for i := range out {
		balance = balance.Add(out[i].Amount)
		out[i].Balance = balance
	}
	return out
}

func (s *snapshot) byMonth(q core.Query) []core.BudgetItemsByMonth {
	start, end := bounds(q)

	var out []core.BudgetItemsByMonth
	index := map[string]int{}
	for _, item := range s.items(q) {
		key := item.Date.MonthKey()
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, core.BudgetItemsByMonth{Month: key, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(item.Amount)

		if !ok {
			first, last := item.Date.MonthBounds()
			if first.Before(start) {
				first = start
			}
			if last.After(end) {
				last = end
			}
			out[i].Details = s.items(core.Query{
				Start:            &first,
				End:              &last,
				FilterByCategory: q.FilterByCategory,
				CategoryID:       q.CategoryID,
			})
		}
	}
	return out
}

func (s *snapshot) byCategory(q core.Query) []core.BudgetItemsByCategory {
	var out []core.BudgetItemsByCategory
	index := map[int]int{}
	for _, item := range s.items(q) {
		i, ok := index[item.CategoryID]
		if !ok {
			i = len(out)
			index[item.CategoryID] = i
			out = append(out, core.BudgetItemsByCategory{
				Category: item.Category,
				Total:    decimal.Zero,
				Details: s.items(core.Query{
					Start:            q.Start,
					End:              q.End,
					FilterByCategory: true,
					CategoryID:       item.CategoryID,
				}),
			})
		}
		out[i].Total = out[i].Total.Add(item.Amount)
	}
	return out
}

func (s *snapshot) pivot(q core.Query) []core.PivotRecord {
	months := s.byMonth(q)
	out := make([]core.PivotRecord, 0, len(months)+1)
	grand := map[string]decimal.Decimal{}

	for _, m := range months {
		var cells []core.PivotCell
		index := map[string]int{}
		for _, item := range m.Details {
			i, ok := index[item.Category]
			if !ok {
				i = len(cells)
				index[item.Category] = i
				cells = append(cells, core.PivotCell{Category: item.Category, Subtotal: decimal.Zero})
			}
			cells[i].Subtotal = cells[i].Subtotal.Add(item.Amount)
			cells[i].Details = append(cells[i].Details, item)
		}
		slices.SortFunc(cells, func(a, b core.PivotCell) int {
			return cmp.Compare(a.Category, b.Category)
		})
		for _, c := range cells {
			grand[c.Category] = grand[c.Category].Add(c.Subtotal)
		}
		out = append(out, core.PivotRecord{Month: m.Month, Total: m.Total, Cells: cells})
	}

	totals := core.PivotRecord{Month: core.TotalsMonth, Total: decimal.Zero}
	seen := map[string]bool{}
	for _, c := range s.categories {
		sum, ok := grand[c.Description]
		if !ok || seen[c.Description] {
			continue
		}
		seen[c.Description] = true
		totals.Cells = append(totals.Cells, core.PivotCell{Category: c.Description, Subtotal: sum})
	}
	return append(out, totals)
}
