package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowerssaints/storefront/app/seed"
)

func newSeedCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := e.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			res, err := seed.Run(db, e.cfg.Affiliate.DefaultTag)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories and %d products.\n", res.Categories, res.Products)
			return nil
		},
	}
}
