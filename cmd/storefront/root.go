package main

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/flowerssaints/storefront/app/config"
	"github.com/flowerssaints/storefront/app/database"
	"github.com/flowerssaints/storefront/app/logging"
)

// env carries what every subcommand needs once the root has loaded it.
type env struct {
	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:          "storefront",
		Short:        "Affiliate storefront server and maintenance commands",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			e.cfg = config.Load()
			e.log = logging.New(e.cfg.Server.Environment)
		},
	}

	root.AddCommand(
		newServeCmd(e),
		newMigrateCmd(e),
		newSeedCmd(e),
		newCreateAdminCmd(e),
	)
	return root
}

// openDB connects using DATABASE_URL. The caller closes the pool.
func (e *env) openDB() (*gorm.DB, func(), error) {
	if e.cfg.Database.URL == "" {
		return nil, nil, errors.New("DATABASE_URL is required")
	}
	db, err := database.Open(e.cfg.Database.URL, e.log)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, closeFn, nil
}
