package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/outlayhq/outlay/internal/cli"
	"github.com/outlayhq/outlay/internal/common"
	"github.com/outlayhq/outlay/internal/filter"
	"github.com/outlayhq/outlay/internal/identity"
	"github.com/outlayhq/outlay/internal/model"
	"github.com/outlayhq/outlay/internal/service"
)

func addCmd() *cobra.Command {
	var (
		dateFlag string
		noteFlag string
		iconFlag string
	)

	cmd := &cobra.Command{
		Use:   "add <amount> <category>",
		Short: "Record an expense",
		Long:  `Record an expense against a category. Unknown categories are created on the fly.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}
			if amount.IsNegative() {
				return fmt.Errorf("amount cannot be negative")
			}

			date := time.Now()
			if dateFlag != "" {
				date, err = time.ParseInLocation(dateLayout, dateFlag, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
			}

			icon, err := parseIcon(iconFlag)
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := requireUser(ctx)
			if err != nil {
				return err
			}

			expense, err := store.CreateExpense(ctx, user, service.ExpenseInput{
				Amount:       amount,
				Date:         date,
				Note:         noteFlag,
				CategoryName: args[1],
				CategoryIcon: icon,
			})
			if err != nil {
				return fmt.Errorf("failed to record expense: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Recorded %s in %s (%s)",
				expense.Amount.StringFixed(2), expense.CategoryName, expense.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&dateFlag, "date", "", "expense date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&noteFlag, "note", "", "free-text note")
	cmd.Flags().StringVar(&iconFlag, "icon", string(model.IconOther), "icon when the category has to be created")
	return cmd
}

func listCmd() *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses grouped by day",
		Long:  `List expenses grouped by calendar day, most recent first, honoring the active filter.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := requireUser(ctx)
			if err != nil {
				return err
			}

			state, err := flags.filterState(cmd, user)
			if err != nil {
				return err
			}

			engine := filter.NewEngine(store)
			report, err := engine.Report(ctx, user, state, time.Now())
			if err != nil {
				return fmt.Errorf("failed to load expenses: %w", err)
			}

			if len(report.Days) == 0 {
				fmt.Println(cli.InfoStyle.Render("No expenses match the current filter."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, day := range report.Days {
				fmt.Fprintf(w, "%s\t\t%s\n",
					cli.FormatTitle(day.Day.Format("Mon, Jan 2 2006")),
					cli.BoldStyle.Render(day.Total.StringFixed(2)))
				for _, exp := range day.Expenses {
					note := exp.Note
					if note == "" {
						note = cli.SubtleStyle.Render("(no note)")
					}
					fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
						exp.Date.Format("15:04"), exp.CategoryName, exp.Amount.StringFixed(2), note,
						cli.SubtleStyle.Render(exp.ID))
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Printf("\n%s %s\n", cli.BoldStyle.Render("Total:"), report.Total.StringFixed(2))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func editCmd() *cobra.Command {
	var (
		amountFlag   string
		dateFlag     string
		noteFlag     string
		categoryFlag string
		iconFlag     string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an expense",
		Long: `Change any of an expense's amount, date, note, or category. Unset flags keep
the stored value. The ID may be an unambiguous prefix.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := requireUser(ctx)
			if err != nil {
				return err
			}

			current, err := findExpense(cmd, store, user, args[0])
			if err != nil {
				return err
			}

			input := service.ExpenseInput{
				Amount:       current.Amount,
				Date:         current.Date,
				Note:         current.Note,
				CategoryName: current.CategoryName,
				CategoryIcon: current.CategoryIcon,
			}
			if !model.ValidIcon(input.CategoryIcon) {
				input.CategoryIcon = model.IconOther
			}

			if cmd.Flags().Changed("amount") {
				input.Amount, err = decimal.NewFromString(amountFlag)
				if err != nil {
					return fmt.Errorf("invalid --amount: %w", err)
				}
			}
			if cmd.Flags().Changed("date") {
				input.Date, err = time.ParseInLocation(dateLayout, dateFlag, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
			}
			if cmd.Flags().Changed("note") {
				input.Note = noteFlag
			}
			if cmd.Flags().Changed("category") {
				input.CategoryName = categoryFlag
			}
			if cmd.Flags().Changed("icon") {
				input.CategoryIcon, err = parseIcon(iconFlag)
				if err != nil {
					return err
				}
			}

			updated, err := store.UpdateExpense(ctx, user, current.ID, input)
			if errors.Is(err, common.ErrNotFound) {
				return common.NewUserError(
					fmt.Sprintf("expense %s no longer exists; refresh with 'outlay list'", args[0]), err)
			}
			if err != nil {
				return fmt.Errorf("failed to update expense: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Updated expense: %s in %s on %s",
				updated.Amount.StringFixed(2), updated.CategoryName, updated.Date.Format(dateLayout))))
			return nil
		},
	}

	cmd.Flags().StringVar(&amountFlag, "amount", "", "new amount")
	cmd.Flags().StringVar(&dateFlag, "date", "", "new date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&noteFlag, "note", "", "new note")
	cmd.Flags().StringVar(&categoryFlag, "category", "", "new category name")
	cmd.Flags().StringVar(&iconFlag, "icon", "", "icon when the new category has to be created")
	return cmd
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Long:  `Delete an expense. The ID may be an unambiguous prefix.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			user, err := requireUser(ctx)
			if err != nil {
				return err
			}

			current, err := findExpense(cmd, store, user, args[0])
			if errors.Is(err, common.ErrNotFound) {
				return common.NewUserError(
					fmt.Sprintf("expense %s no longer exists; refresh with 'outlay list'", args[0]), err)
			}
			if err != nil {
				return err
			}

			err = store.DeleteExpense(ctx, user, current.ID)
			if errors.Is(err, common.ErrNotFound) {
				return common.NewUserError(
					fmt.Sprintf("expense %s no longer exists; refresh with 'outlay list'", args[0]), err)
			}
			if err != nil {
				return fmt.Errorf("failed to delete expense: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Deleted expense"))
			return nil
		},
	}
}

// findExpense loads one expense by ID, accepting unambiguous ID prefixes so
// users can paste the short form shown by 'outlay list'.
func findExpense(cmd *cobra.Command, store service.ExpenseStore, user identity.UserContext, id string) (*model.Expense, error) {
	ctx := cmd.Context()

	expenses, err := store.ListAll(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}

	var match *model.Expense
	for i := range expenses {
		if expenses[i].ID == id {
			return &expenses[i], nil
		}
		if strings.HasPrefix(expenses[i].ID, id) {
			if match != nil {
				return nil, fmt.Errorf("expense ID %q is ambiguous", id)
			}
			match = &expenses[i]
		}
	}

	if match == nil {
		return nil, fmt.Errorf("%w: expense %s", common.ErrNotFound, id)
	}
	return match, nil
}
