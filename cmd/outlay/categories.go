package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/outlayhq/outlay/internal/cli"
	"github.com/outlayhq/outlay/internal/common"
	"github.com/outlayhq/outlay/internal/identity"
	"github.com/outlayhq/outlay/internal/model"
	"github.com/outlayhq/outlay/internal/service"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
		Long:  `List, add, rename, and delete the categories expenses are tagged with.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(renameCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
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

			categories, err := store.ListCategories(ctx, user)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Println(cli.InfoStyle.Render("No categories yet. They are seeded on your first 'outlay categories add'."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\n",
				cli.BoldStyle.Render("ID"),
				cli.BoldStyle.Render("Name"),
				cli.BoldStyle.Render("Icon"))
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				strings.Repeat("-", 36),
				strings.Repeat("-", 20),
				strings.Repeat("-", 14))

			for _, cat := range categories {
				fmt.Fprintf(w, "%s\t%s\t%s\n", cat.ID, cat.Name, cat.Icon)
			}

			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var iconFlag string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Long:  `Create a new expense category. The first category created for a user also seeds the base set.`,
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

			icon, err := parseIcon(iconFlag)
			if err != nil {
				return err
			}

			category, err := store.CreateCategory(ctx, user, args[0], icon)
			if errors.Is(err, common.ErrDuplicateName) {
				return common.NewUserError(fmt.Sprintf("category %q already exists", args[0]), err)
			}
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created category %q (%s)", category.Name, category.Icon)))
			return nil
		},
	}

	cmd.Flags().StringVar(&iconFlag, "icon", string(model.IconOther), "icon tag for the category")
	return cmd
}

func renameCategoryCmd() *cobra.Command {
	var iconFlag string

	cmd := &cobra.Command{
		Use:   "rename <id> <new-name>",
		Short: "Rename or retag a category",
		Long:  `Rename a category and optionally change its icon. Expenses keep pointing at the updated category.`,
		Args:  cobra.ExactArgs(2),
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

			var icon model.Icon
			if cmd.Flags().Changed("icon") {
				icon, err = parseIcon(iconFlag)
				if err != nil {
					return err
				}
			} else {
				// No new icon given: keep the stored one.
				current, findErr := findCategory(ctx, store, user, args[0])
				if findErr != nil {
					return findErr
				}
				icon = current.Icon
			}

			category, err := store.UpdateCategory(ctx, user, args[0], args[1], icon)
			switch {
			case errors.Is(err, common.ErrDuplicateName):
				return common.NewUserError(fmt.Sprintf("a category named %q already exists", args[1]), err)
			case errors.Is(err, common.ErrNotFound):
				return common.NewUserError(fmt.Sprintf("category %s no longer exists", args[0]), err)
			case err != nil:
				return fmt.Errorf("failed to update category: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated category to %q (%s)", category.Name, category.Icon)))
			return nil
		},
	}

	cmd.Flags().StringVar(&iconFlag, "icon", "", "new icon tag (default: keep the current icon)")
	return cmd
}

// findCategory loads one category by ID.
func findCategory(ctx context.Context, store service.CategoryStore, user identity.UserContext, id string) (*model.Category, error) {
	categories, err := store.ListCategories(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	for i := range categories {
		if categories[i].ID == id {
			return &categories[i], nil
		}
	}

	return nil, common.NewUserError(
		fmt.Sprintf("category %s no longer exists", id), common.ErrNotFound)
}

func deleteCategoryCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category and its expenses",
		Long:  `Delete a category. Every expense referencing it is deleted too; pass --force to skip the warning.`,
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

			if !force {
				hasExpenses, checkErr := store.HasExpenses(ctx, user, args[0])
				if checkErr != nil {
					return fmt.Errorf("failed to check category usage: %w", checkErr)
				}
				if hasExpenses {
					fmt.Println(cli.FormatWarning("This category has expenses; deleting it deletes them too. Re-run with --force."))
					return nil
				}
			}

			found, err := store.DeleteCategory(ctx, user, args[0])
			if err != nil {
				return fmt.Errorf("failed to delete category: %w", err)
			}
			if !found {
				fmt.Println(cli.InfoStyle.Render("No matching category; nothing deleted."))
				return nil
			}

			fmt.Println(cli.FormatSuccess("Deleted category and its expenses"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "delete even when the category has expenses")
	return cmd
}
