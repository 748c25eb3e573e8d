// Package text renders reports and form feedback as plain terminal tables.
package text

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"homebudget/internal/core"
)

// Theme holds the colours used by a Renderer. Empty fields render unstyled.
type Theme struct {
	Header   string
	Label    string
	Negative string
	Border   string
}

func DefaultTheme() Theme {
	return Theme{
		Header:   "#89b4fa",
		Label:    "#7f849c",
		Negative: "#f38ba8",
		Border:   "#45475a",
	}
}

// Renderer writes to w. It implements presenter.MainView, presenter.EditView
// and presenter.Display.
type Renderer struct {
	w        io.Writer
	header   lipgloss.Style
	label    lipgloss.Style
	negative lipgloss.Style
	border   lipgloss.Style
	plain    lipgloss.Style
}

func New(w io.Writer, theme Theme) *Renderer {
	lr := lipgloss.NewRenderer(w)
	style := func(color string) lipgloss.Style {
		s := lr.NewStyle()
		if color != "" {
			s = s.Foreground(lipgloss.Color(color))
		}
		return s
	}
	return &Renderer{
		w:        w,
		header:   style(theme.Header).Bold(true),
		label:    style(theme.Label),
		negative: style(theme.Negative),
		border:   style(theme.Border),
		plain:    lr.NewStyle(),
	}
}

func (r *Renderer) PopulateCategories(categories []core.Category) {
	rows := make([][]string, len(categories))
	for i, c := range categories {
		rows[i] = []string{fmt.Sprint(c.ID), c.Description, c.Type.String()}
	}
	r.table("Categories", []string{"Id", "Description", "Type"}, rows, 0)
}

func (r *Renderer) ShowError(msg string) {
	r.println(r.negative.Render(msg))
}

func (r *Renderer) ShowExpensesAddError(msg string, _ []int) {
	r.println(r.negative.Render(msg))
}

func (r *Renderer) ShowCategoriesAddError(msg string, _ []int) {
	r.println(r.negative.Render(msg))
}

func (r *Renderer) ClearCategoryForm() {}

func (r *Renderer) ClearExpenseForm() {}

func (r *Renderer) SuccessfullyAddedCategory(msg string) {
	r.println(r.label.Render(msg))
}

func (r *Renderer) SuccessfullyAddedExpense(msg string) {
	r.println(r.label.Render(msg))
}

func (r *Renderer) UpdateBudgetItem(item core.BudgetItem) {
	r.println(r.label.Render(fmt.Sprintf("Editing expense %d: %s %s %s",
		item.ExpenseID, item.Date, item.ShortDescription, core.FormatAmount(item.Amount))))
}

func (r *Renderer) DisplayEditFail(msg string) {
	r.println(r.negative.Render(msg))
}

func (r *Renderer) IndicateSuccessfulEdit() {
	r.println(r.label.Render("Successfully updated expense"))
}

func (r *Renderer) ShowBudgetItems(items []core.BudgetItem) {
	r.table("Budget items", itemHeaders, itemRows(items), 2)
}

func (r *Renderer) ShowBudgetItemsByMonth(groups []core.BudgetItemsByMonth) {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{g.Month, core.FormatAmount(g.Total)})
	}
	r.table("Totals by month", []string{"Month", "Total"}, rows, 1)
}

func (r *Renderer) ShowBudgetItemsByCategory(groups []core.BudgetItemsByCategory) {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{g.Category, core.FormatAmount(g.Total)})
	}
	r.table("Totals by category", []string{"Category", "Total"}, rows, 1)
}

// ShowBudgetItemsByCategoryAndMonth prints one row per month and one column
// per category seen, followed by the TOTALS row whose last column is the sum
// of every category total.
func (r *Renderer) ShowBudgetItemsByCategoryAndMonth(records []core.PivotRecord) {
	columns := core.PivotCategories(records)
	headers := append([]string{"Month"}, columns...)
	headers = append(headers, "Total")

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := []string{rec.Month}
		for _, col := range columns {
			if v, ok := rec.Lookup(col); ok {
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
		rows = append(rows, row)
	}
	r.table("Totals by month and category", headers, rows, 1)
}

var itemHeaders = []string{"Id", "Date", "Category", "Description", "Amount", "Balance"}

func itemRows(items []core.BudgetItem) [][]string {
	rows := make([][]string, len(items))
	for i, it := range items {
		rows[i] = []string{
			fmt.Sprint(it.ExpenseID),
			it.Date.String(),
			it.Category,
			it.ShortDescription,
			core.FormatAmount(it.Amount),
			core.FormatAmount(it.Balance),
		}
	}
	return rows
}

// table prints rows under headers. Columns from numericFrom on are right
// aligned and negative values use the negative style.
func (r *Renderer) table(title string, headers []string, rows [][]string, numericFrom int) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	cell := func(style lipgloss.Style, i int, s string) string {
		style = style.Width(widths[i] + 2).PaddingRight(2)
		if i >= numericFrom && i > 0 {
			style = style.Align(lipgloss.Right).PaddingRight(0).PaddingLeft(2)
		}
		return style.Render(s)
	}

	var b strings.Builder
	b.WriteString(r.header.Render(title))
	b.WriteString("\n")

	parts := make([]string, len(headers))
	for i, h := range headers {
		parts[i] = cell(r.header, i, h)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	b.WriteString("\n")

	total := 0
	for _, w := range widths {
		total += w + 2
	}
	b.WriteString(r.border.Render(strings.Repeat("─", total)))
	b.WriteString("\n")

	for _, row := range rows {
		for i, v := range row {
			style := r.plain
			if i >= numericFrom && i > 0 && isNegative(v) {
				style = r.negative
			}
			parts[i] = cell(style, i, v)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
		b.WriteString("\n")
	}

	r.println(b.String())
}

func isNegative(s string) bool {
	d, err := decimal.NewFromString(s)
	return err == nil && d.IsNegative()
}

func (r *Renderer) println(s string) {
	fmt.Fprintln(r.w, strings.TrimRight(s, "\n"))
}
