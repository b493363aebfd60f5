package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/totegamma/admindata/internal/config"
	"github.com/totegamma/admindata/internal/infra/database"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			db, err := openDatabase(conf.Server)
			if err != nil {
				return errors.Wrap(err, "connect database")
			}
			if err := database.Migrate(db); err != nil {
				return errors.Wrap(err, "migrate database")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrated")
			return nil
		},
	}
}
