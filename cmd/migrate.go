package main

import (
	"fmt"

	"github.com/julz808/educoach-prep-portal-sub001/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.Driver == "memory" {
			return fmt.Errorf("nothing to migrate for the memory driver")
		}
		db, err := database.NewDatabase(cfg)
		if err != nil {
			return err
		}
		return database.AutoMigrate(db)
	},
}
