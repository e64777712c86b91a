package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowerssaints/storefront/app/auth"
	"github.com/flowerssaints/storefront/app/logging"
	"github.com/flowerssaints/storefront/models"
)

func newCreateAdminCmd(e *env) *cobra.Command {
	var email, name, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a dashboard administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ADMIN_PASSWORD")
			}
			user, err := auth.NewAdmin(email, name, password)
			if err != nil {
				return err
			}

			db, closeDB, err := e.openDB()
			if err != nil {
				return err
			}
			defer closeDB()

			users := models.NewUsersRepository(db)
			if _, err := users.GetByEmail(user.Email); err == nil {
				return fmt.Errorf("user %s already exists", logging.RedactEmail(user.Email))
			}
			if err := users.Create(user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s).\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "admin email address")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&password, "password", "", "password (or ADMIN_PASSWORD)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
