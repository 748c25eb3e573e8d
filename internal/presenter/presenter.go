// Package presenter sits between the views and the budget. It validates what
// the user typed, applies the change and tells the views what to show next.
package presenter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"homebudget/internal/core"
)

const (
	msgEmptyDescription = "-Description can not be empty."
	msgLongDescription  = "-Description can not be longer than 200 characters."
	msgInvalidAmount    = "-Amount must be a number."
	msgEmptyDate        = "-Date can not be empty."
	msgInvalidDate      = "-Date must be in yyyy-MM-dd format."
	msgUnknownCategory  = "-Category does not exist."
	msgInvalidType      = "-Category type is not valid."

	msgAddCategoryFailed = "Error executing add category. You may have opened the wrong type of file."
	msgAddExpenseFailed  = "There was an error executing the add expense. You may have opened the wrong type of file."
	msgEditFailed        = "Error editing the expense. You may have opened the wrong type of file."
	msgDeleteFailed      = "Error deleting the expense. You may have opened the wrong type of file."
	msgCategoryFailed    = "Error changing the category. You may have opened the wrong type of file."
	msgReadFailed        = "Error reading the budget. You may have opened the wrong type of file."

	msgCategoryAdded = "Successfully added category"
	msgExpenseAdded  = "Successfully added expense"
)

// Argument positions of AddExpense and EditExpense inputs.
const (
	posAmount = iota
	posCategory
	posDate
	posDescription
)

// Service is the subset of services.BudgetService the presenter drives.
type Service interface {
	Categories(ctx context.Context) ([]core.Category, error)
	Category(ctx context.Context, id int) (core.Category, error)
	AddCategory(ctx context.Context, description string, typ core.CategoryType) (core.Category, error)
	UpdateCategory(ctx context.Context, id int, description string, typ core.CategoryType) (int64, error)
	DeleteCategory(ctx context.Context, id int) error
	ResetCategories(ctx context.Context) error

	Expense(ctx context.Context, id int) (core.Expense, error)
	AddExpense(ctx context.Context, date core.Date, categoryID int, amount decimal.Decimal, description string) (core.Expense, error)
	UpdateExpense(ctx context.Context, id int, date core.Date, categoryID int, amount decimal.Decimal, description string) (int64, error)
	DeleteExpense(ctx context.Context, id int) error

	Reports
}

type Presenter struct {
	svc      Service
	main     MainView
	edit     EditView
	display  Display
	last     Selection
	selected bool
}

// New binds the presenter to the main view and fills its category list.
func New(ctx context.Context, svc Service, main MainView) (*Presenter, error) {
	p := &Presenter{svc: svc, main: main}
	if err := p.populateCategories(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Presenter) SetEditView(v EditView) { p.edit = v }

func (p *Presenter) SetDisplay(d Display) { p.display = d }

// AddCategory validates and stores a new category, then refreshes the
// category list on the main view.
func (p *Presenter) AddCategory(ctx context.Context, description string, typ core.CategoryType) error {
	verr := &core.ValidationError{}
	if strings.TrimSpace(description) == "" {
		verr.Add(0, msgEmptyDescription)
	}
	if !typ.IsValid() {
		verr.Add(1, msgInvalidType)
	}
	if err := verr.OrNil(); err != nil {
		p.main.ShowCategoriesAddError(joinMessages(verr), verr.Positions)
		return err
	}

	if _, err := p.svc.AddCategory(ctx, description, typ); err != nil {
		slog.ErrorContext(ctx, "Failed to add category", "error", err)
		p.main.ShowCategoriesAddError(msgAddCategoryFailed, []int{})
		return err
	}

	p.main.SuccessfullyAddedCategory(msgCategoryAdded)
	p.main.ClearCategoryForm()
	return p.populateCategories(ctx)
}

func (p *Presenter) UpdateCategory(ctx context.Context, id int, description string, typ core.CategoryType) error {
	verr := &core.ValidationError{}
	if strings.TrimSpace(description) == "" {
		verr.Add(1, msgEmptyDescription)
	}
	if !typ.IsValid() {
		verr.Add(2, msgInvalidType)
	}
	if err := verr.OrNil(); err != nil {
		p.main.ShowCategoriesAddError(joinMessages(verr), verr.Positions)
		return err
	}

	if _, err := p.svc.UpdateCategory(ctx, id, description, typ); err != nil {
		p.main.ShowError(categoryFailure(err))
		return err
	}
	if err := p.populateCategories(ctx); err != nil {
		return err
	}
	return p.Refresh(ctx)
}

// DeleteCategory removes a category. Its expenses stay stored but no longer
// show up in reports.
func (p *Presenter) DeleteCategory(ctx context.Context, id int) error {
	if err := p.svc.DeleteCategory(ctx, id); err != nil {
		p.main.ShowError(msgCategoryFailed)
		return err
	}
	if err := p.populateCategories(ctx); err != nil {
		return err
	}
	return p.Refresh(ctx)
}

func (p *Presenter) ResetCategories(ctx context.Context) error {
	if err := p.svc.ResetCategories(ctx); err != nil {
		p.main.ShowError(msgCategoryFailed)
		return err
	}
	if err := p.populateCategories(ctx); err != nil {
		return err
	}
	return p.Refresh(ctx)
}

// AddExpense takes the form fields as typed. Every problem is reported at
// once, with positions following the argument order.
func (p *Presenter) AddExpense(ctx context.Context, amount string, categoryID int, date string, description string) error {
	in, verr, err := ParseExpense(ctx, p.svc, amount, categoryID, date, description)
	if err != nil {
		p.main.ShowError(msgAddExpenseFailed)
		return err
	}
	if verr != nil {
		p.main.ShowExpensesAddError(joinMessages(verr), verr.Positions)
		return verr
	}

	if _, err := p.svc.AddExpense(ctx, in.Date, categoryID, in.Amount, description); err != nil {
		slog.ErrorContext(ctx, "Failed to add expense", "error", err)
		p.main.ShowError(msgAddExpenseFailed)
		return err
	}

	p.main.SuccessfullyAddedExpense(msgExpenseAdded)
	p.main.ClearExpenseForm()
	return p.Refresh(ctx)
}

// EditExpense replaces every field of expense id. Results go to the edit
// view.
func (p *Presenter) EditExpense(ctx context.Context, id int, amount string, categoryID int, date string, description string) error {
	in, verr, err := ParseExpense(ctx, p.svc, amount, categoryID, date, description)
	if err != nil {
		p.editFail(msgEditFailed)
		return err
	}
	if verr != nil {
		p.editFail(joinMessages(verr))
		return verr
	}

	if _, err := p.svc.UpdateExpense(ctx, id, in.Date, categoryID, in.Amount, description); err != nil {
		slog.ErrorContext(ctx, "Failed to edit expense", "expense_id", id, "error", err)
		p.editFail(msgEditFailed)
		return err
	}

	if p.edit != nil {
		p.edit.IndicateSuccessfulEdit()
	}
	return p.Refresh(ctx)
}

func (p *Presenter) DeleteExpense(ctx context.Context, id int) error {
	if err := p.svc.DeleteExpense(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to delete expense", "expense_id", id, "error", err)
		p.main.ShowError(msgDeleteFailed)
		return err
	}
	return p.Refresh(ctx)
}

// Display shows exactly one shape: both groupings give the pivot, otherwise
// the single grouping asked for, otherwise the flat list. The selection is
// kept for Refresh.
func (p *Presenter) Display(ctx context.Context, sel Selection) error {
	p.last = sel
	p.selected = true
	if p.display == nil {
		return nil
	}

	if err := Show(ctx, p.svc, sel, p.display); err != nil {
		slog.ErrorContext(ctx, "Failed to build report", "error", err)
		p.main.ShowError(msgReadFailed)
		return fmt.Errorf("display budget: %w", err)
	}
	return nil
}

// Refresh re-runs the last selection, if any.
func (p *Presenter) Refresh(ctx context.Context) error {
	if !p.selected {
		return nil
	}
	return p.Display(ctx, p.last)
}

// Selection returns the last displayed selection.
func (p *Presenter) Selection() Selection {
	return p.last
}

// CategoryNames lists category descriptions in id order.
func (p *Presenter) CategoryNames(ctx context.Context) ([]string, error) {
	cats, err := p.svc.Categories(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Description
	}
	return names, nil
}

// TriggerUpdate asks the main view to open item for editing.
func (p *Presenter) TriggerUpdate(item core.BudgetItem) {
	p.main.UpdateBudgetItem(item)
}

// ExpenseInput is an expense form that passed validation.
type ExpenseInput struct {
	Amount decimal.Decimal
	Date   core.Date
}

// CategoryLookup resolves a category id.
type CategoryLookup interface {
	Category(ctx context.Context, id int) (core.Category, error)
}

// ParseExpense validates the expense form fields as typed. It returns a
// non-nil error only when the category lookup itself failed; input problems
// come back as the ValidationError.
func ParseExpense(ctx context.Context, categories CategoryLookup, amount string, categoryID int, date string, description string) (ExpenseInput, *core.ValidationError, error) {
	var in ExpenseInput
	verr := &core.ValidationError{}

	a, err := core.ParseAmount(amount)
	if err != nil {
		verr.Add(posAmount, msgInvalidAmount)
	}
	in.Amount = a

	if _, err := categories.Category(ctx, categoryID); err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			return in, nil, err
		}
		verr.Add(posCategory, msgUnknownCategory)
	}

	if strings.TrimSpace(date) == "" {
		verr.Add(posDate, msgEmptyDate)
	} else if d, err := core.ParseDate(date); err != nil {
		verr.Add(posDate, msgInvalidDate)
	} else {
		in.Date = d
	}

	if strings.TrimSpace(description) == "" {
		verr.Add(posDescription, msgEmptyDescription)
	} else if utf8.RuneCountInString(description) > core.MaxDescriptionLength {
		verr.Add(posDescription, msgLongDescription)
	}

	if verr.OrNil() != nil {
		return in, verr, nil
	}
	return in, nil, nil
}

func (p *Presenter) populateCategories(ctx context.Context) error {
	cats, err := p.svc.Categories(ctx)
	if err != nil {
		p.main.ShowError(msgReadFailed)
		return fmt.Errorf("list categories: %w", err)
	}
	p.main.PopulateCategories(cats)
	return nil
}

func (p *Presenter) editFail(msg string) {
	if p.edit != nil {
		p.edit.DisplayEditFail(msg)
		return
	}
	p.main.ShowError(msg)
}

func categoryFailure(err error) string {
	if errors.Is(err, core.ErrNotFound) {
		return "Error changing the category. It no longer exists."
	}
	return msgCategoryFailed
}

func joinMessages(v *core.ValidationError) string {
	return strings.Join(v.Messages, "\n")
}
