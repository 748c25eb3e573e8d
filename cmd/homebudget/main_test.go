package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homebudget/internal/core"
	"homebudget/internal/storage"
)

// run executes the command line against the budget file in dir.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOMEBUDGET_BACKEND", "sqlite")
	t.Setenv("HOMEBUDGET_DATA_DIR", dir)
	t.Setenv("HOMEBUDGET_LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--db", filepath.Join(dir, "budget.db")}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	assert.Equal(t, "homebudget", root.Use)
	assert.Contains(t, root.Long, "budget file")

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"init", "category", "expense", "report", "export", "serve", "events"} {
		assert.Contains(t, names, want)
	}
}

func TestInitAndCategories(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created budget at")

	out, err = run(t, dir, "category", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Credit Card")
	assert.Contains(t, out, "Income")

	out, err = run(t, dir, "category", "add", "Pets", "--type", "Expense")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully added category")

	out, err = run(t, dir, "category", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Pets")

	_, err = run(t, dir, "category", "add", "Loans", "--type", "Debt")
	assert.Error(t, err)
}

func storedCategory(t *testing.T, dir string, id int) core.Category {
	t.Helper()
	ctx := context.Background()
	repo, err := storage.NewSQLiteRepository(ctx, filepath.Join(dir, "budget.db"), false)
	require.NoError(t, err)
	defer repo.Close()
	c, err := repo.Categories().Get(ctx, id)
	require.NoError(t, err)
	return c
}

func TestCategoryUpdateKeepsTypeUnlessGiven(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "init")
	require.NoError(t, err)

	_, err = run(t, dir, "category", "update", "9", "Visa")
	require.NoError(t, err)
	c := storedCategory(t, dir, 9)
	assert.Equal(t, "Visa", c.Description)
	assert.Equal(t, core.TypeCredit, c.Type)

	_, err = run(t, dir, "category", "update", "9", "Visa", "--type", "Savings")
	require.NoError(t, err)
	assert.Equal(t, core.TypeSavings, storedCategory(t, dir, 9).Type)

	_, err = run(t, dir, "category", "update", "99", "Nothing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestExpensesAndReports(t *testing.T) {
	dir := t.TempDir()

	for _, args := range [][]string{
		{"expense", "add", "-a", "10", "-c", "10", "-d", "2018-01-10", "-m", "hat (credit)"},
		{"expense", "add", "-a", "-10", "-c", "9", "-d", "2018-01-11", "-m", "hat"},
		{"expense", "add", "-a", "15", "-c", "10", "-d", "2019-01-10", "-m", "scarf (credit)"},
		{"expense", "add", "-a", "-15", "-c", "9", "-d", "2020-01-10", "-m", "scarf"},
	} {
		out, err := run(t, dir, args...)
		require.NoError(t, err, args)
		assert.Contains(t, out, "Successfully added expense")
	}

	out, err := run(t, dir, "expense", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "scarf (credit)")
	assert.Contains(t, out, "-15.00")

	out, err = run(t, dir, "report", "--month")
	require.NoError(t, err)
	assert.Contains(t, out, "2018/01")
	assert.Contains(t, out, "2020/01")

	out, err = run(t, dir, "report", "--category-group", "--start", "2019-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "Clothes")
	assert.Contains(t, out, "15.00")

	out, err = run(t, dir, "report", "--month", "--category-group")
	require.NoError(t, err)
	assert.Contains(t, out, "TOTALS")

	out, err = run(t, dir, "expense", "update", "2", "-m", "wool hat")
	require.NoError(t, err)
	assert.Contains(t, out, "Successfully updated expense")

	out, err = run(t, dir, "expense", "list", "--category", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "wool hat")
	assert.NotContains(t, out, "scarf (credit)")

	_, err = run(t, dir, "expense", "delete", "2")
	require.NoError(t, err)
	_, err = run(t, dir, "expense", "update", "2", "-m", "gone")
	assert.Error(t, err)
}

func TestExpenseValidationMessages(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "expense", "add", "-a", "ten", "-c", "99", "-d", "10/01/2018")
	require.Error(t, err)
	assert.Contains(t, out, "-Amount must be a number.")
	assert.Contains(t, out, "-Category does not exist.")
	assert.Contains(t, out, "-Date must be in yyyy-MM-dd format.")
	assert.Contains(t, out, "-Description can not be empty.")
}

func TestExportXLSX(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, dir, "expense", "add", "-a", "-3.50", "-c", "3", "-d", "2024-02-01", "-m", "bread")
	require.NoError(t, err)

	out, err := run(t, dir, "export", "xlsx", "--month")
	require.NoError(t, err)
	path := filepath.Join(dir, "budget-month.xlsx")
	assert.Contains(t, out, path)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestExportSheetsNeedsSpreadsheet(t *testing.T) {
	t.Setenv("HOMEBUDGET_SHEETS_SPREADSHEET_ID", "")
	_, err := run(t, t.TempDir(), "export", "sheets")
	assert.ErrorContains(t, err, "spreadsheet")
}

func TestEventsNeedsBroker(t *testing.T) {
	t.Setenv("HOMEBUDGET_AMQP_URL", "")
	_, err := run(t, t.TempDir(), "events")
	assert.ErrorContains(t, err, "amqp.url")
}

func TestSyncSheetsPreconditions(t *testing.T) {
	t.Setenv("HOMEBUDGET_SHEETS_SPREADSHEET_ID", "")
	_, err := run(t, t.TempDir(), "sync", "sheets")
	assert.ErrorContains(t, err, "spreadsheet")

	t.Setenv("HOMEBUDGET_AMQP_URL", "")
	_, err = run(t, t.TempDir(), "sync", "sheets", "--spreadsheet-id", "abc")
	assert.ErrorContains(t, err, "amqp.url")
}
