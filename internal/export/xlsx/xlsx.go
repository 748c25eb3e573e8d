// Package xlsx writes budget reports to an Excel workbook, one sheet per
// report shape.
package xlsx

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"homebudget/internal/core"
)

const (
	SheetItems    = "Items"
	SheetMonth    = "By month"
	SheetCategory = "By category"
	SheetPivot    = "By month and category"

	headerColor   = "#6C5CE7"
	negativeColor = "#D63031"
	numFmtAmount  = 4 // #,##0.00
)

// Exporter implements presenter.Display. Showing the same shape twice
// replaces the sheet. Errors are kept and returned by WriteTo and SaveAs.
type Exporter struct {
	f        *excelize.File
	used     map[string]bool
	header   int
	amount   int
	negative int
	err      error
}

func New() (*Exporter, error) {
	f := excelize.NewFile()
	e := &Exporter{f: f, used: map[string]bool{}}

	var err error
	if e.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{headerColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}
	if e.amount, err = f.NewStyle(&excelize.Style{
		NumFmt:    numFmtAmount,
		Alignment: &excelize.Alignment{Horizontal: "right"},
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("create amount style: %w", err)
	}
	if e.negative, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: negativeColor},
		NumFmt:    numFmtAmount,
		Alignment: &excelize.Alignment{Horizontal: "right"},
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("create negative style: %w", err)
	}
	return e, nil
}

func (e *Exporter) ShowBudgetItems(items []core.BudgetItem) {
	rows := make([][]any, len(items))
	for i, it := range items {
		rows[i] = []any{it.ExpenseID, it.Date.String(), it.Category, it.ShortDescription, it.Amount, it.Balance}
	}
	e.writeSheet(SheetItems, []string{"Id", "Date", "Category", "Description", "Amount", "Balance"}, rows)
}

// ShowBudgetItemsByMonth writes a total row per month followed by its
// details.
func (e *Exporter) ShowBudgetItemsByMonth(groups []core.BudgetItemsByMonth) {
	var rows [][]any
	for _, g := range groups {
		rows = append(rows, []any{g.Month, "", "", "", g.Total})
		for _, it := range g.Details {
			rows = append(rows, []any{"", it.Date.String(), it.Category, it.ShortDescription, it.Amount})
		}
	}
	e.writeSheet(SheetMonth, []string{"Month", "Date", "Category", "Description", "Amount"}, rows)
}

func (e *Exporter) ShowBudgetItemsByCategory(groups []core.BudgetItemsByCategory) {
	var rows [][]any
	for _, g := range groups {
		rows = append(rows, []any{g.Category, "", "", g.Total})
		for _, it := range g.Details {
			rows = append(rows, []any{"", it.Date.String(), it.ShortDescription, it.Amount})
		}
	}
	e.writeSheet(SheetCategory, []string{"Category", "Date", "Description", "Amount"}, rows)
}

// ShowBudgetItemsByCategoryAndMonth writes a column per category and a last
// Total column; on the TOTALS row Total is the sum of the category totals.
func (e *Exporter) ShowBudgetItemsByCategoryAndMonth(records []core.PivotRecord) {
	columns := core.PivotCategories(records)
	headers := append([]string{"Month"}, columns...)
	headers = append(headers, "Total")

	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		row := []any{rec.Month}
		for _, col := range columns {
			if v, ok := rec.Lookup(col); ok {
				row = append(row, v)
			} else {
				row = append(row, "")
			}
		}
		if rec.IsTotals() {
			row = append(row, rec.CellTotal())
		} else {
			row = append(row, rec.Total)
		}
		rows = append(rows, row)
	}
	e.writeSheet(SheetPivot, headers, rows)
}

// WriteTo writes the workbook as xlsx.
func (e *Exporter) WriteTo(w io.Writer) (int64, error) {
	if e.err != nil {
		return 0, e.err
	}
	return e.f.WriteTo(w)
}

func (e *Exporter) SaveAs(path string) error {
	if e.err != nil {
		return e.err
	}
	if err := e.f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (e *Exporter) Close() error {
	return e.f.Close()
}

func (e *Exporter) writeSheet(name string, headers []string, rows [][]any) {
	if e.err != nil {
		return
	}
	if err := e.prepareSheet(name); err != nil {
		e.err = fmt.Errorf("prepare sheet %q: %w", name, err)
		return
	}

	for col, h := range headers {
		e.set(name, col+1, 1, h, e.header)
	}
	for r, row := range rows {
		for col, v := range row {
			e.set(name, col+1, r+2, v, 0)
		}
	}

	last, _ := excelize.ColumnNumberToName(len(headers))
	if err := e.f.SetColWidth(name, "A", last, 16); err != nil && e.err == nil {
		e.err = err
	}
}

func (e *Exporter) set(sheet string, col, row int, v any, style int) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		e.err = err
		return
	}

	switch d := v.(type) {
	case decimal.Decimal:
		v = d.InexactFloat64()
		if style == 0 {
			style = e.amount
			if d.IsNegative() {
				style = e.negative
			}
		}
	}

	if err := e.f.SetCellValue(sheet, cell, v); err != nil {
		e.err = err
		return
	}
	if style != 0 {
		if err := e.f.SetCellStyle(sheet, cell, cell, style); err != nil {
			e.err = err
		}
	}
}

// prepareSheet makes name an empty sheet. The default "Sheet1" is renamed
// for the first shape written.
func (e *Exporter) prepareSheet(name string) error {
	if e.used[name] {
		rows, err := e.f.GetRows(name)
		if err != nil {
			return err
		}
		for i := len(rows); i >= 1; i-- {
			if err := e.f.RemoveRow(name, i); err != nil {
				return err
			}
		}
		return nil
	}

	if len(e.used) == 0 {
		if err := e.f.SetSheetName("Sheet1", name); err != nil {
			return err
		}
	} else if _, err := e.f.NewSheet(name); err != nil {
		return err
	}
	e.used[name] = true
	return nil
}
