package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"homebudget/internal/core"
	"homebudget/internal/export/xlsx"
	"homebudget/internal/log"
	"homebudget/internal/presenter"
	"homebudget/internal/sheets/google"
)

type reportFlags struct {
	byMonth    bool
	byCategory bool
	start      string
	end        string
	category   int
}

func (f *reportFlags) registerQuery(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "first date included, yyyy-MM-dd")
	cmd.Flags().StringVar(&f.end, "end", "", "last date included, yyyy-MM-dd")
	cmd.Flags().IntVar(&f.category, "category", 0, "only expenses in this category id")
}

func (f *reportFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.byMonth, "month", false, "group by month")
	cmd.Flags().BoolVar(&f.byCategory, "category-group", false, "group by category")
	f.registerQuery(cmd)
}

// selection turns the flags into a presenter selection. Both groupings
// select the month by category table.
func (f *reportFlags) selection(cmd *cobra.Command) (presenter.Selection, error) {
	sel := presenter.Selection{GroupByMonth: f.byMonth, GroupByCategory: f.byCategory}
	for _, bound := range []struct {
		value string
		dst   **core.Date
	}{{f.start, &sel.Query.Start}, {f.end, &sel.Query.End}} {
		if bound.value == "" {
			continue
		}
		d, err := core.ParseDate(bound.value)
		if err != nil {
			return sel, err
		}
		*bound.dst = &d
	}
	if cmd.Flags().Changed("category") {
		sel.Query.FilterByCategory = true
		sel.Query.CategoryID = f.category
	}
	return sel, nil
}

func (a *app) runReport(cmd *cobra.Command, f reportFlags) error {
	sel, err := f.selection(cmd)
	if err != nil {
		return err
	}
	res, cleanup, err := a.open(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()
	p, err := a.presenter(cmd.Context(), res, false)
	if err != nil {
		return err
	}
	return p.Display(cmd.Context(), sel)
}

func newReportCmd(a *app) *cobra.Command {
	var f reportFlags
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the budget as a list, by month, by category, or both",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runReport(cmd, f)
		},
	}
	f.register(cmd)
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a report to a spreadsheet",
	}

	var xf reportFlags
	var out string
	xlsxCmd := &cobra.Command{
		Use:   "xlsx",
		Short: "Write the report to an xlsx workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := xf.selection(cmd)
			if err != nil {
				return err
			}
			if out == "" {
				out = filepath.Join(a.cfg.DataDir, "budget-"+sel.Shape()+".xlsx")
			}
			res, cleanup, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			exp, err := xlsx.New()
			if err != nil {
				return err
			}
			defer exp.Close()
			if err := presenter.Show(cmd.Context(), res.Service, sel, exp); err != nil {
				return fmt.Errorf("build report: %w", err)
			}
			if err := exp.SaveAs(out); err != nil {
				return err
			}
			a.logger.WithComponent(log.ComponentExport).Info("Workbook written", "path", out, log.FieldReportShape, sel.Shape())
			fmt.Fprintf(a.stdout, "Wrote %s\n", out)
			return nil
		},
	}
	xf.register(xlsxCmd)
	xlsxCmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <data_dir>/budget-<shape>.xlsx)")

	var sf reportFlags
	var spreadsheetID, tab string
	sheetsCmd := &cobra.Command{
		Use:   "sheets",
		Short: "Write the report to a Google Sheets tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := sf.selection(cmd)
			if err != nil {
				return err
			}
			if spreadsheetID == "" {
				spreadsheetID = a.cfg.Sheets.SpreadsheetID
			}
			if tab == "" {
				tab = a.cfg.Sheets.Tab
			}
			if spreadsheetID == "" {
				return errors.New("no spreadsheet id: set sheets.spreadsheet_id or --spreadsheet-id")
			}

			res, cleanup, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			exp, err := google.NewFromEnv(cmd.Context(), spreadsheetID, tab)
			if err != nil {
				return err
			}
			if err := presenter.Show(cmd.Context(), res.Service, sel, exp); err != nil {
				return fmt.Errorf("build report: %w", err)
			}
			if err := exp.Flush(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Wrote %s report to tab %q\n", sel.Shape(), tab)
			return nil
		},
	}
	sf.register(sheetsCmd)
	sheetsCmd.Flags().StringVar(&spreadsheetID, "spreadsheet-id", "", "target spreadsheet (overrides sheets.spreadsheet_id)")
	sheetsCmd.Flags().StringVar(&tab, "tab", "", "target tab (overrides sheets.tab)")

	cmd.AddCommand(xlsxCmd, sheetsCmd)
	return cmd
}
