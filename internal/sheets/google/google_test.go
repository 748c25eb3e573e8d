package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"homebudget/internal/core"
)

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	_, err := NewFromEnv(context.Background(), "  ", "Budget")
	require.Error(t, err)
	assert.Equal(t, "missing spreadsheet id", err.Error())
}

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background(), "sheet-id", "Budget")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing service account credentials")
}

func TestNewFromEnv_UnreadableCredentialsFile(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "/nonexistent/credentials.json")

	_, err := NewFromEnv(context.Background(), "sheet-id", "Budget")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read service account file")
}

func TestFlush_NothingPending(t *testing.T) {
	e := NewWithService(nil, "id", "")
	assert.Equal(t, defaultTab, e.tab)
	require.Error(t, e.Flush(context.Background()))
}

type fakeSheetsAPI struct {
	mu       sync.Mutex
	calls    []string
	titles   []string
	lastBody string
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == http.MethodGet:
		f.calls = append(f.calls, "get")
		sheets := make([]map[string]any, 0, len(f.titles))
		for _, t := range f.titles {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": t}})
		}
		json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})
		return
	case strings.HasSuffix(path, ":batchUpdate"):
		f.calls = append(f.calls, "addSheet")
	case strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
	case r.Method == http.MethodPut:
		f.calls = append(f.calls, "update")
		f.lastBody = string(body)
	default:
		f.calls = append(f.calls, r.Method+" "+path)
	}
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, "{}")
}

func newFakeExporter(t *testing.T, api *fakeSheetsAPI) *Exporter {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return NewWithService(svc, "sheet-id", "Budget")
}

func TestFlush_CreatesTabAndWrites(t *testing.T) {
	api := &fakeSheetsAPI{titles: []string{"Sheet1"}}
	e := newFakeExporter(t, api)

	e.ShowBudgetItemsByMonth([]core.BudgetItemsByMonth{{Month: "2019/01", Total: decimal.NewFromInt(15)}})
	require.NoError(t, e.Flush(context.Background()))

	assert.Equal(t, []string{"get", "addSheet", "clear", "update"}, api.calls)
	assert.Contains(t, api.lastBody, `"2019/01"`)
	assert.Contains(t, api.lastBody, `"15.00"`)
}

func TestFlush_ExistingTab(t *testing.T) {
	api := &fakeSheetsAPI{titles: []string{"Budget"}}
	e := newFakeExporter(t, api)

	e.ShowBudgetItems(nil)
	require.NoError(t, e.Flush(context.Background()))
	assert.Equal(t, []string{"get", "clear", "update"}, api.calls)
}
