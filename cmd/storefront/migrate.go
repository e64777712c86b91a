package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowerssaints/storefront/app/database"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := e.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := database.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Database migrations applied.")
			return nil
		},
	}
}
