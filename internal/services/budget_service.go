package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"homebudget/internal/amqp"
	"homebudget/internal/budget"
	"homebudget/internal/core"
)

// Publisher sends change notifications; *amqp.Client implements it.
type Publisher interface {
	PublishBudgetChanged(ctx context.Context, msg *amqp.BudgetChangedMessage) error
}

// ChangeListener is called in-process after every committed mutation.
type ChangeListener func(ctx context.Context, msg *amqp.BudgetChangedMessage)

// BudgetService applies mutations to the budget and announces each committed
// change. Reads go straight to the embedded Budget.
type BudgetService struct {
	*budget.Budget
	publisher Publisher
	listeners []ChangeListener
}

// NewBudgetService wraps b. publisher may be nil, in which case changes are
// only delivered to local listeners.
func NewBudgetService(b *budget.Budget, publisher Publisher) *BudgetService {
	return &BudgetService{Budget: b, publisher: publisher}
}

// SetPublisher replaces the publisher. Not safe to call concurrently with
// mutations.
func (s *BudgetService) SetPublisher(p Publisher) {
	s.publisher = p
}

// OnChange registers a listener. Not safe to call concurrently with mutations.
func (s *BudgetService) OnChange(fn ChangeListener) {
	s.listeners = append(s.listeners, fn)
}

func (s *BudgetService) AddCategory(ctx context.Context, description string, typ core.CategoryType) (core.Category, error) {
	c, err := s.Budget.AddCategory(ctx, description, typ)
	if err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}
	s.notify(ctx, amqp.EntityCategory, amqp.OpCreated, c.ID)
	return c, nil
}

func (s *BudgetService) UpdateCategory(ctx context.Context, id int, description string, typ core.CategoryType) (int64, error) {
	n, err := s.Budget.UpdateCategory(ctx, id, description, typ)
	if err != nil {
		return 0, fmt.Errorf("update category: %w", err)
	}
	s.notify(ctx, amqp.EntityCategory, amqp.OpUpdated, id)
	return n, nil
}

func (s *BudgetService) DeleteCategory(ctx context.Context, id int) error {
	if err := s.Budget.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.notify(ctx, amqp.EntityCategory, amqp.OpDeleted, id)
	return nil
}

func (s *BudgetService) ResetCategories(ctx context.Context) error {
	if err := s.Budget.ResetCategories(ctx); err != nil {
		return fmt.Errorf("reset categories: %w", err)
	}
	s.notify(ctx, amqp.EntityCategory, amqp.OpReset, 0)
	return nil
}

func (s *BudgetService) AddExpense(ctx context.Context, date core.Date, categoryID int, amount decimal.Decimal, description string) (core.Expense, error) {
	e, err := s.Budget.AddExpense(ctx, date, categoryID, amount, description)
	if err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}
	s.notify(ctx, amqp.EntityExpense, amqp.OpCreated, e.ID)
	return e, nil
}

func (s *BudgetService) UpdateExpense(ctx context.Context, id int, date core.Date, categoryID int, amount decimal.Decimal, description string) (int64, error) {
	n, err := s.Budget.UpdateExpense(ctx, id, date, categoryID, amount, description)
	if err != nil {
		return 0, fmt.Errorf("update expense: %w", err)
	}
	s.notify(ctx, amqp.EntityExpense, amqp.OpUpdated, id)
	return n, nil
}

func (s *BudgetService) DeleteExpense(ctx context.Context, id int) error {
	if err := s.Budget.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.notify(ctx, amqp.EntityExpense, amqp.OpDeleted, id)
	return nil
}

// notify never fails the mutation that triggered it.
func (s *BudgetService) notify(ctx context.Context, entity, op string, id int) {
	msg := amqp.NewBudgetChangedMessage(entity, op, id)

	for _, fn := range s.listeners {
		fn(ctx, msg)
	}

	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping change event",
			"entity", entity, "op", op, "entity_id", id)
		return
	}
	if err := s.publisher.PublishBudgetChanged(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change event",
			"entity", entity,
			"op", op,
			"entity_id", id,
			"error", err)
	}
}
