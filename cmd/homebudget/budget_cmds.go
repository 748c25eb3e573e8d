package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"homebudget/internal/core"
)

func newCategoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories"},
		Short:   "List and change categories",
	}

	var typeName, updateType string
	typeHelp := "category type: Income, Expense, Credit or Savings (or 1-4)"

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, cleanup, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			_, err = a.presenter(cmd.Context(), res, true)
			return err
		},
	}

	add := &cobra.Command{
		Use:   "add DESCRIPTION",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := core.ParseCategoryType(typeName)
			if err != nil {
				return err
			}
			res, cleanup, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			p, err := a.presenter(cmd.Context(), res, false)
			if err != nil {
				return err
			}
			return p.AddCategory(cmd.Context(), args[0], typ)
		},
	}
	add.Flags().StringVarP(&typeName, "type", "t", core.TypeExpense.String(), typeHelp)

	update := &cobra.Command{
		Use:   "update ID DESCRIPTION",
		Short: "Rename a category or change its type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, cleanup, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			var typ core.CategoryType
			if cmd.Flags().Changed("type") {
				if typ, err = core.ParseCategoryType(updateType); err != nil {
					return err
				}
			} else {
				current, err := res.Service.Category(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("category %d: %w", id, err)
				}
				typ = current.Type
			}

			p, err := a.presenter(cmd.Context(), res, false)
			if err != nil {
				return err
			}
			return p.UpdateCategory(cmd.Context(), id, args[1], typ)
		},
	}
	update.Flags().StringVarP(&updateType, "type", "t", "", typeHelp+"; unchanged when not given")

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a category; its expenses are kept but left out of reports",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, cleanup, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			p, err := a.presenter(cmd.Context(), res, false)
			if err != nil {
				return err
			}
			return p.DeleteCategory(cmd.Context(), id)
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Replace every category with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, cleanup, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			p, err := a.presenter(cmd.Context(), res, false)
			if err != nil {
				return err
			}
			return p.ResetCategories(cmd.Context())
		},
	}

	cmd.AddCommand(list, add, update, del, reset)
	return cmd
}

type expenseFlags struct {
	amount      string
	category    int
	date        string
	description string
}

func (f *expenseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.amount, "amount", "a", "", "signed amount; negative is money going out")
	cmd.Flags().IntVarP(&f.category, "category", "c", 0, "category id")
	cmd.Flags().StringVarP(&f.date, "date", "d", "", "date as yyyy-MM-dd (default today)")
	cmd.Flags().StringVarP(&f.description, "description", "m", "", "short description")
}

func newExpenseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expense",
		Aliases: []string{"expenses"},
		Short:   "List and change expenses",
	}

	var addFlags, updateFlags expenseFlags
	var rf reportFlags

	list := &cobra.Command{
		Use:   "list",
		Short: "List expenses with running balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rf.byMonth, rf.byCategory = false, false
			return a.runReport(cmd, rf)
		},
	}
	rf.registerQuery(list)

	add := &cobra.Command{
		Use:   "add",
		Short: "Add an expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addFlags.date == "" {
				addFlags.date = time.Now().Format(core.DateLayout)
			}
			res, cleanup, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			p, err := a.presenter(cmd.Context(), res, false)
			if err != nil {
				return err
			}
			return p.AddExpense(cmd.Context(), addFlags.amount, addFlags.category, addFlags.date, addFlags.description)
		},
	}
	addFlags.register(add)

	update := &cobra.Command{
		Use:   "update ID",
		Short: "Change an expense; fields not given keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, cleanup, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			current, err := res.Service.Expense(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("expense %d: %w", id, err)
			}
			f := cmd.Flags()
			if !f.Changed("amount") {
				updateFlags.amount = current.Amount.String()
			}
			if !f.Changed("category") {
				updateFlags.category = current.CategoryID
			}
			if !f.Changed("date") {
				updateFlags.date = current.Date.String()
			}
			if !f.Changed("description") {
				updateFlags.description = current.Description
			}

			p, err := a.presenter(cmd.Context(), res, false)
			if err != nil {
				return err
			}
			return p.EditExpense(cmd.Context(), id, updateFlags.amount, updateFlags.category, updateFlags.date, updateFlags.description)
		},
	}
	updateFlags.register(update)

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, cleanup, err := a.open(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()
			p, err := a.presenter(cmd.Context(), res, false)
			if err != nil {
				return err
			}
			if err := p.DeleteExpense(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Deleted expense %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(list, add, update, del)
	return cmd
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
