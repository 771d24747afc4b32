package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/outlayhq/outlay/internal/cli"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long:  `Bring the local database schema up to the version this build expects. Safe to run repeatedly.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			version, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Database schema is at version %d", version)))
			return nil
		},
	}
}
