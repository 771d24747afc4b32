package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/outlayhq/outlay/internal/cli"
	"github.com/outlayhq/outlay/internal/filter"
)

func reportCmd() *cobra.Command {
	var (
		flags filterFlags
		sort  string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show spending by category",
		Long:  `Aggregate the filtered expenses by category: totals, share of spending, and count.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if sort != "asc" && sort != "desc" {
				return fmt.Errorf("invalid --sort: %s (want asc or desc)", sort)
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

			state, err := flags.filterState(cmd, user)
			if err != nil {
				return err
			}
			state.SortDescending = sort == "desc"

			engine := filter.NewEngine(store)
			report, err := engine.Report(ctx, user, state, time.Now())
			if err != nil {
				return fmt.Errorf("failed to build report: %w", err)
			}

			if len(report.Categories) == 0 {
				fmt.Println(cli.InfoStyle.Render("No expenses match the current filter."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.BoldStyle.Render("Category"),
				cli.BoldStyle.Render("Total"),
				cli.BoldStyle.Render("Share"),
				cli.BoldStyle.Render("Count"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 20),
				strings.Repeat("-", 10),
				strings.Repeat("-", 5),
				strings.Repeat("-", 5))

			for _, group := range report.Categories {
				fmt.Fprintf(w, "%s\t%s\t%d%%\t%d\n",
					group.Name, group.Total.StringFixed(2), group.Percentage, len(group.Expenses))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			fmt.Printf("\n%s %s\n", cli.BoldStyle.Render("Total:"), report.Total.StringFixed(2))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&sort, "sort", "desc", "order categories by total (asc, desc)")
	return cmd
}
