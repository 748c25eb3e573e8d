package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"homebudget/internal/core"
)

// CategoryStore persists categories in the categories table.
type CategoryStore struct {
	db      *sql.DB
	queries *Queries
}

// Add stores a category under the next free id (max + 1, or 1 when empty).
func (s *CategoryStore) Add(ctx context.Context, description string, typ core.CategoryType) (core.Category, error) {
	var created Category
	err := withTx(ctx, s.db, s.queries, func(q *Queries) error {
		max, err := q.MaxCategoryID(ctx)
		if err != nil {
			return fmt.Errorf("read max category id: %w", err)
		}
		created, err = q.CreateCategory(ctx, CreateCategoryParams{
			ID:          max + 1,
			Description: description,
			TypeID:      int64(typ),
		})
		if err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Category{}, core.Persistence("add category", err)
	}

	slog.DebugContext(ctx, "Category saved to SQLite",
		"id", created.ID,
		"description", created.Description,
		"type_id", created.TypeID)

	return toCoreCategory(created), nil
}

// Delete removes the category with the given id. Deleting an absent id is
// not an error, and expenses referencing it are left untouched.
func (s *CategoryStore) Delete(ctx context.Context, id int) error {
	if err := s.queries.DeleteCategory(ctx, int64(id)); err != nil {
		return core.Persistence("delete category", err)
	}
	return nil
}

// Update rewrites description and type of an existing category and returns
// the number of rows affected.
func (s *CategoryStore) Update(ctx context.Context, id int, description string, typ core.CategoryType) (int64, error) {
	res, err := s.queries.UpdateCategory(ctx, UpdateCategoryParams{
		Description: description,
		TypeID:      int64(typ),
		ID:          int64(id),
	})
	if err != nil {
		return 0, core.Persistence("update category", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, core.Persistence("update category", err)
	}
	if n == 0 {
		return 0, fmt.Errorf("update category %d: %w", id, core.ErrNotFound)
	}
	return n, nil
}

// Get returns the category with the given id.
func (s *CategoryStore) Get(ctx context.Context, id int) (core.Category, error) {
	c, err := s.queries.GetCategory(ctx, int64(id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, core.Persistence("get category", err)
	}
	return toCoreCategory(c), nil
}

// List returns every category ordered by id.
func (s *CategoryStore) List(ctx context.Context) ([]core.Category, error) {
	rows, err := s.queries.ListCategories(ctx)
	if err != nil {
		return nil, core.Persistence("list categories", err)
	}
	out := make([]core.Category, len(rows))
	for i, c := range rows {
		out[i] = toCoreCategory(c)
	}
	return out, nil
}

// ResetToDefaults replaces every category with core.DefaultCategories.
func (s *CategoryStore) ResetToDefaults(ctx context.Context) error {
	err := withTx(ctx, s.db, s.queries, func(q *Queries) error {
		if err := q.DeleteAllCategories(ctx); err != nil {
			return fmt.Errorf("clear categories: %w", err)
		}
		for i, c := range core.DefaultCategories {
			if _, err := q.CreateCategory(ctx, CreateCategoryParams{
				ID:          int64(i + 1),
				Description: c.Description,
				TypeID:      int64(c.Type),
			}); err != nil {
				return fmt.Errorf("create default category %q: %w", c.Description, err)
			}
		}
		return nil
	})
	if err != nil {
		return core.Persistence("reset categories", err)
	}

	slog.InfoContext(ctx, "Categories reset to defaults", "count", len(core.DefaultCategories))
	return nil
}

func toCoreCategory(c Category) core.Category {
	return core.Category{
		ID:          int(c.ID),
		Description: c.Description,
		Type:        core.CategoryType(c.TypeID),
	}
}
