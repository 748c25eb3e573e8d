// Package memory keeps categories and expenses in process memory. It backs
// tests and the "memory" backend; nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"homebudget/internal/core"
)

type Store struct {
	categories *CategoryStore
	expenses   *ExpenseStore
}

// New returns an empty store. Seeded stores start with core.DefaultCategories.
func New(seed bool) *Store {
	s := &Store{
		categories: &CategoryStore{},
		expenses:   &ExpenseStore{},
	}
	if seed {
		_ = s.categories.ResetToDefaults(context.Background())
	}
	return s
}

func (s *Store) Categories() *CategoryStore { return s.categories }

func (s *Store) Expenses() *ExpenseStore { return s.expenses }

func (s *Store) Close() error { return nil }

type CategoryStore struct {
	mu    sync.Mutex
	items []core.Category
}

func (s *CategoryStore) Add(_ context.Context, description string, typ core.CategoryType) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := core.Category{ID: nextID(s.items, func(c core.Category) int { return c.ID }), Description: description, Type: typ}
	s.items = append(s.items, c)
	return c, nil
}

func (s *CategoryStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.DeleteFunc(s.items, func(c core.Category) bool { return c.ID == id })
	return nil
}

func (s *CategoryStore) Update(_ context.Context, id int, description string, typ core.CategoryType) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Description = description
			s.items[i].Type = typ
			return 1, nil
		}
	}
	return 0, fmt.Errorf("update category %d: %w", id, core.ErrNotFound)
}

func (s *CategoryStore) Get(_ context.Context, id int) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.items {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
}

// List returns a copy ordered by id.
func (s *CategoryStore) List(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items), nil
}

func (s *CategoryStore) ResetToDefaults(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = s.items[:0]
	for i, c := range core.DefaultCategories {
		c.ID = i + 1
		s.items = append(s.items, c)
	}
	return nil
}

type ExpenseStore struct {
	mu    sync.Mutex
	items []core.Expense
}

func (s *ExpenseStore) Add(_ context.Context, date core.Date, categoryID int, amount decimal.Decimal, description string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := core.Expense{
		ID:          nextID(s.items, func(e core.Expense) int { return e.ID }),
		Date:        date,
		CategoryID:  categoryID,
		Amount:      amount,
		Description: description,
	}
	s.items = append(s.items, e)
	return e, nil
}

func (s *ExpenseStore) Delete(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.DeleteFunc(s.items, func(e core.Expense) bool { return e.ID == id })
	return nil
}

func (s *ExpenseStore) Update(_ context.Context, id int, date core.Date, categoryID int, amount decimal.Decimal, description string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = core.Expense{ID: id, Date: date, CategoryID: categoryID, Amount: amount, Description: description}
			return 1, nil
		}
	}
	return 0, fmt.Errorf("update expense %d: %w", id, core.ErrNotFound)
}

func (s *ExpenseStore) Get(_ context.Context, id int) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.items {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
}

// List returns a copy ordered by id.
func (s *ExpenseStore) List(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items), nil
}

// nextID is max+1 over the current items; items are kept in id order so the
// last one holds the max.
func nextID[T any](items []T, id func(T) int) int {
	if len(items) == 0 {
		return 1
	}
	return id(items[len(items)-1]) + 1
}
