package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"homebudget/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the single open handle on a budget file. Only one
// connection is kept so every statement runs serially; other processes
// opening the same file are not guarded against.
type SQLiteRepository struct {
	db         *sql.DB
	queries    *Queries
	path       string
	categories *CategoryStore
	expenses   *ExpenseStore
}

// NewSQLiteRepository opens the budget file at dbPath. When newDB is true,
// or the file does not exist yet, a fresh database is created and the
// default categories are written.
func NewSQLiteRepository(ctx context.Context, dbPath string, newDB bool) (*SQLiteRepository, error) {
	fresh := newDB
	if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		fresh = true
	} else if err == nil && newDB {
		if err := os.Remove(dbPath); err != nil {
			return nil, core.Persistence("replace budget file", err)
		}
	}

	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, core.Persistence("create db directory", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, core.Persistence("open sqlite database", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, core.Persistence("ping database", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, core.Persistence("migrate budget file", err)
	}

	repo := newRepository(db, dbPath)

	if fresh {
		if err := repo.categories.ResetToDefaults(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("seed default categories: %w", err)
		}
	}

	slog.InfoContext(ctx, "Budget file opened",
		"path", dbPath,
		"fresh", fresh,
		"schema_version", version)

	return repo, nil
}

func newRepository(db *sql.DB, path string) *SQLiteRepository {
	q := New(db)
	return &SQLiteRepository{
		db:         db,
		queries:    q,
		path:       path,
		categories: &CategoryStore{db: db, queries: q},
		expenses:   &ExpenseStore{db: db, queries: q},
	}
}

// Categories returns the category store bound to this file.
func (r *SQLiteRepository) Categories() *CategoryStore {
	return r.categories
}

// Expenses returns the expense store bound to this file.
func (r *SQLiteRepository) Expenses() *ExpenseStore {
	return r.expenses
}

// Path returns the budget file location.
func (r *SQLiteRepository) Path() string {
	return r.path
}

// CategoryTypes returns the lookup table written at creation time.
func (r *SQLiteRepository) CategoryTypes(ctx context.Context) ([]CategoryType, error) {
	types, err := r.queries.ListCategoryTypes(ctx)
	if err != nil {
		return nil, core.Persistence("list category types", err)
	}
	return types, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// withTx runs fn inside a transaction on the shared connection.
func withTx(ctx context.Context, db *sql.DB, q *Queries, fn func(*Queries) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(q.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
