package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/outlayhq/outlay/internal/cli"
	"github.com/outlayhq/outlay/internal/export"
)

func exportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all expenses to CSV",
		Long:  `Write every expense to a CSV document (Date,Category,Amount,Description).`,
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

			expenses, err := store.ListAll(ctx, user)
			if err != nil {
				return fmt.Errorf("failed to load expenses: %w", err)
			}

			exporter := export.NewExporter(nil)

			var path string
			if out != "" {
				file, createErr := os.Create(out)
				if createErr != nil {
					return fmt.Errorf("failed to create %s: %w", out, createErr)
				}
				if err := exporter.Write(expenses, file); err != nil {
					_ = file.Close()
					return err
				}
				if err := file.Close(); err != nil {
					return err
				}
				path = out
			} else {
				path, err = exporter.WriteTempFile(expenses)
				if err != nil {
					return err
				}
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported %d expenses to %s", len(expenses), path)))
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "output file (default: a temporary file)")
	return cmd
}
