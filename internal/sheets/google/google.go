// Package google publishes budget reports to a Google Sheets tab.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"homebudget/internal/core"
)

const defaultTab = "Budget"

// Exporter implements presenter.Display. Each Show call replaces the pending
// report; Flush writes it to the tab, replacing whatever was there.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	tab           string
	pending       [][]any
}

// NewFromEnv creates an exporter authenticated with service account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context, spreadsheetID, tab string) (*Exporter, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, spreadsheetID, tab), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, tab string) *Exporter {
	if strings.TrimSpace(tab) == "" {
		tab = defaultTab
	}
	return &Exporter{svc: svc, spreadsheetID: spreadsheetID, tab: tab}
}

func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		data, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (e *Exporter) ShowBudgetItems(items []core.BudgetItem) {
	e.pending = ItemValues(items)
}

func (e *Exporter) ShowBudgetItemsByMonth(groups []core.BudgetItemsByMonth) {
	e.pending = MonthValues(groups)
}

func (e *Exporter) ShowBudgetItemsByCategory(groups []core.BudgetItemsByCategory) {
	e.pending = CategoryValues(groups)
}

func (e *Exporter) ShowBudgetItemsByCategoryAndMonth(records []core.PivotRecord) {
	e.pending = PivotValues(records)
}

// Flush creates the tab when missing, clears it and writes the pending
// report starting at A1.
func (e *Exporter) Flush(ctx context.Context) error {
	if e.pending == nil {
		return errors.New("nothing to export")
	}
	if e.svc == nil {
		return errors.New("sheets service not initialised")
	}

	if err := e.ensureTab(ctx); err != nil {
		return err
	}

	quoted := quoteTab(e.tab)
	if _, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, quoted, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear tab %q: %w", e.tab, err)
	}

	vr := &gsheet.ValueRange{Values: e.pending}
	resp, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, quoted+"!A1", vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write tab %q: %w", e.tab, err)
	}

	slog.InfoContext(ctx, "Report exported to Google Sheets",
		"spreadsheet_id", e.spreadsheetID,
		"tab", e.tab,
		"rows", len(e.pending),
		"updated_cells", resp.UpdatedCells)
	return nil
}

func (e *Exporter) ensureTab(ctx context.Context) error {
	ss, err := e.svc.Spreadsheets.Get(e.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	titles := make([]string, 0, len(ss.Sheets))
	for _, s := range ss.Sheets {
		if s.Properties != nil {
			titles = append(titles, s.Properties.Title)
		}
	}
	if slices.Contains(titles, e.tab) {
		return nil
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: e.tab}},
		}},
	}
	if _, err := e.svc.Spreadsheets.BatchUpdate(e.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add tab %q: %w", e.tab, err)
	}
	slog.InfoContext(ctx, "Created Google Sheets tab", "tab", e.tab)
	return nil
}

func quoteTab(tab string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'"
}
