package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/flowerssaints/storefront/app/database"
	"github.com/flowerssaints/storefront/app/server"
)

func newServeCmd(e *env) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, closeDB, err := e.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			if migrate {
				if err := database.Migrate(db); err != nil {
					return err
				}
			}

			app, err := server.New(ctx, e.cfg, db, e.log)
			if err != nil {
				return err
			}
			return app.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run schema migrations before serving")
	return cmd
}
