package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"homebudget/internal/core"
)

// ExpenseStore persists expenses in the expenses table.
type ExpenseStore struct {
	db      *sql.DB
	queries *Queries
}

// Add stores an expense under the next free id (max + 1, or 1 when empty).
// The category id is not checked against the categories table.
func (s *ExpenseStore) Add(ctx context.Context, date core.Date, categoryID int, amount decimal.Decimal, description string) (core.Expense, error) {
	var created Expense
	err := withTx(ctx, s.db, s.queries, func(q *Queries) error {
		max, err := q.MaxExpenseID(ctx)
		if err != nil {
			return fmt.Errorf("read max expense id: %w", err)
		}
		created, err = q.CreateExpense(ctx, CreateExpenseParams{
			ID:          max + 1,
			Date:        date.String(),
			Description: description,
			Amount:      amount,
			CategoryID:  int64(categoryID),
		})
		if err != nil {
			return fmt.Errorf("create expense: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Expense{}, core.Persistence("add expense", err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"id", created.ID,
		"date", created.Date,
		"amount", created.Amount.String(),
		"category_id", created.CategoryID)

	return toCoreExpense(created)
}

// Delete removes the expense with the given id; absent ids are ignored.
func (s *ExpenseStore) Delete(ctx context.Context, id int) error {
	if err := s.queries.DeleteExpense(ctx, int64(id)); err != nil {
		return core.Persistence("delete expense", err)
	}
	return nil
}

// Update replaces every field of an existing expense and returns the number
// of rows affected.
func (s *ExpenseStore) Update(ctx context.Context, id int, date core.Date, categoryID int, amount decimal.Decimal, description string) (int64, error) {
	res, err := s.queries.UpdateExpense(ctx, UpdateExpenseParams{
		Date:        date.String(),
		Description: description,
		Amount:      amount,
		CategoryID:  int64(categoryID),
		ID:          int64(id),
	})
	if err != nil {
		return 0, core.Persistence("update expense", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, core.Persistence("update expense", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("update expense %d: %w", id, core.ErrNotFound)
	}
	return n, nil
}

// Get returns the expense with the given id.
func (s *ExpenseStore) Get(ctx context.Context, id int) (core.Expense, error) {
	e, err := s.queries.GetExpense(ctx, int64(id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, core.Persistence("get expense", err)
	}
	return toCoreExpense(e)
}

// List returns every expense ordered by id.
func (s *ExpenseStore) List(ctx context.Context) ([]core.Expense, error) {
	rows, err := s.queries.ListExpenses(ctx)
	if err != nil {
		return nil, core.Persistence("list expenses", err)
	}
	out := make([]core.Expense, 0, len(rows))
	for _, e := range rows {
		ce, err := toCoreExpense(e)
		if err != nil {
			return nil, err
		}
		out = append(out, ce)
	}
	return out, nil
}

func toCoreExpense(e Expense) (core.Expense, error) {
	date, err := core.ParseDate(e.Date)
	if err != nil {
		return core.Expense{}, core.Persistence("decode expense date", err)
	}
	return core.Expense{
		ID:          int(e.ID),
		Date:        date,
		CategoryID:  int(e.CategoryID),
		Amount:      e.Amount,
		Description: e.Description,
	}, nil
}
