package storage

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

const maxCategoryID = `-- name: MaxCategoryID :one
SELECT COALESCE(MAX(Id), 0) FROM categories
`

func (q *Queries) MaxCategoryID(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, maxCategoryID)
	var max int64
	err := row.Scan(&max)
	return max, err
}

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (Id, Description, TypeId)
VALUES (?, ?, ?)
RETURNING Id, Description, TypeId
`

type CreateCategoryParams struct {
	ID          int64
	Description string
	TypeID      int64
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRowContext(ctx, createCategory, arg.ID, arg.Description, arg.TypeID)
	var i Category
	err := row.Scan(&i.ID, &i.Description, &i.TypeID)
	return i, err
}

const getCategory = `-- name: GetCategory :one
SELECT Id, Description, TypeId FROM categories WHERE Id = ?
`

func (q *Queries) GetCategory(ctx context.Context, id int64) (Category, error) {
	row := q.db.QueryRowContext(ctx, getCategory, id)
	var i Category
	err := row.Scan(&i.ID, &i.Description, &i.TypeID)
	return i, err
}

const listCategories = `-- name: ListCategories :many
SELECT Id, Description, TypeId FROM categories ORDER BY Id
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Description, &i.TypeID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateCategory = `-- name: UpdateCategory :execresult
UPDATE categories SET Description = ?, TypeId = ? WHERE Id = ?
`

type UpdateCategoryParams struct {
	Description string
	TypeID      int64
	ID          int64
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, updateCategory, arg.Description, arg.TypeID, arg.ID)
}

const deleteCategory = `-- name: DeleteCategory :exec
DELETE FROM categories WHERE Id = ?
`

func (q *Queries) DeleteCategory(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteCategory, id)
	return err
}

const deleteAllCategories = `-- name: DeleteAllCategories :exec
DELETE FROM categories
`

func (q *Queries) DeleteAllCategories(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllCategories)
	return err
}

const listCategoryTypes = `-- name: ListCategoryTypes :many
SELECT Id, Description FROM categoryTypes ORDER BY Id
`

func (q *Queries) ListCategoryTypes(ctx context.Context) ([]CategoryType, error) {
	rows, err := q.db.QueryContext(ctx, listCategoryTypes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategoryType
	for rows.Next() {
		var i CategoryType
		if err := rows.Scan(&i.ID, &i.Description); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const maxExpenseID = `-- name: MaxExpenseID :one
SELECT COALESCE(MAX(Id), 0) FROM expenses
`

func (q *Queries) MaxExpenseID(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, maxExpenseID)
	var max int64
	err := row.Scan(&max)
	return max, err
}

const createExpense = `-- name: CreateExpense :one
INSERT INTO expenses (Id, Date, Description, Amount, CategoryId)
VALUES (?, ?, ?, ?, ?)
RETURNING Id, Date, Description, Amount, CategoryId
`

type CreateExpenseParams struct {
	ID          int64
	Date        string
	Description string
	Amount      decimal.Decimal
	CategoryID  int64
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, createExpense,
		arg.ID,
		arg.Date,
		arg.Description,
		arg.Amount.InexactFloat64(),
		arg.CategoryID,
	)
	var i Expense
	err := row.Scan(&i.ID, &i.Date, &i.Description, &i.Amount, &i.CategoryID)
	return i, err
}

const getExpense = `-- name: GetExpense :one
SELECT Id, Date, Description, Amount, CategoryId FROM expenses WHERE Id = ?
`

func (q *Queries) GetExpense(ctx context.Context, id int64) (Expense, error) {
	row := q.db.QueryRowContext(ctx, getExpense, id)
	var i Expense
	err := row.Scan(&i.ID, &i.Date, &i.Description, &i.Amount, &i.CategoryID)
	return i, err
}

const listExpenses = `-- name: ListExpenses :many
SELECT Id, Date, Description, Amount, CategoryId FROM expenses ORDER BY Id
`

func (q *Queries) ListExpenses(ctx context.Context) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var i Expense
		if err := rows.Scan(&i.ID, &i.Date, &i.Description, &i.Amount, &i.CategoryID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateExpense = `-- name: UpdateExpense :execresult
UPDATE expenses
SET Date = ?, Description = ?, Amount = ?, CategoryId = ?
WHERE Id = ?
`

type UpdateExpenseParams struct {
	Date        string
	Description string
	Amount      decimal.Decimal
	CategoryID  int64
	ID          int64
}

func (q *Queries) UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, updateExpense,
		arg.Date,
		arg.Description,
		arg.Amount.InexactFloat64(),
		arg.CategoryID,
		arg.ID,
	)
}

const deleteExpense = `-- name: DeleteExpense :exec
DELETE FROM expenses WHERE Id = ?
`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteExpense, id)
	return err
}
