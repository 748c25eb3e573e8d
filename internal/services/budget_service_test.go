package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homebudget/internal/amqp"
	"homebudget/internal/budget"
	"homebudget/internal/core"
	"homebudget/internal/storage/memory"
)

type recordingPublisher struct {
	msgs []*amqp.BudgetChangedMessage
	err  error
}

func (p *recordingPublisher) PublishBudgetChanged(_ context.Context, msg *amqp.BudgetChangedMessage) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func newTestService(pub Publisher) *BudgetService {
	store := memory.New(true)
	return NewBudgetService(budget.New(store.Categories(), store.Expenses()), pub)
}

func TestBudgetService_PublishesOnMutation(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(pub)
	ctx := context.Background()

	e, err := svc.AddExpense(ctx, core.NewDate(2024, 5, 1), 3, decimal.NewFromInt(-20), "groceries")
	require.NoError(t, err)
	_, err = svc.UpdateExpense(ctx, e.ID, core.NewDate(2024, 5, 2), 3, decimal.NewFromInt(-25), "groceries")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteExpense(ctx, e.ID))

	c, err := svc.AddCategory(ctx, "Pets", core.TypeExpense)
	require.NoError(t, err)
	require.NoError(t, svc.ResetCategories(ctx))

	require.Len(t, pub.msgs, 5)
	assert.Equal(t, amqp.EntityExpense, pub.msgs[0].Entity)
	assert.Equal(t, amqp.OpCreated, pub.msgs[0].Op)
	assert.Equal(t, e.ID, pub.msgs[0].EntityID)
	assert.Equal(t, amqp.OpUpdated, pub.msgs[1].Op)
	assert.Equal(t, amqp.OpDeleted, pub.msgs[2].Op)
	assert.Equal(t, amqp.EntityCategory, pub.msgs[3].Entity)
	assert.Equal(t, c.ID, pub.msgs[3].EntityID)
	assert.Equal(t, amqp.OpReset, pub.msgs[4].Op)
}

func TestBudgetService_PublishFailureDoesNotFailMutation(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := newTestService(pub)
	ctx := context.Background()

	e, err := svc.AddExpense(ctx, core.NewDate(2024, 5, 1), 3, decimal.NewFromInt(-20), "groceries")
	require.NoError(t, err)

	got, err := svc.Expense(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "groceries", got.Description)
}

func TestBudgetService_NoPublishOnFailure(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(pub)

	_, err := svc.UpdateExpense(context.Background(), 99, core.NewDate(2024, 1, 1), 1, decimal.Zero, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, pub.msgs)
}

func TestBudgetService_ListenersWithoutPublisher(t *testing.T) {
	svc := newTestService(nil)
	var seen []string
	svc.OnChange(func(_ context.Context, msg *amqp.BudgetChangedMessage) {
		seen = append(seen, msg.Entity+":"+msg.Op)
	})

	_, err := svc.AddCategory(context.Background(), "Pets", core.TypeExpense)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCategory(context.Background(), 1))

	assert.Equal(t, []string{"category:created", "category:deleted"}, seen)
}
