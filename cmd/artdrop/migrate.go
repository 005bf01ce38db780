package main

import (
	"github.com/blues/artdrop/internal/logger"
	"github.com/blues/artdrop/internal/repository"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the projection tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := repository.Init(cfg.Database)
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		defer sqlDB.Close()

		logger.Info("Migrated %d tables on %s/%s", len(repository.Models), cfg.Database.Host, cfg.Database.DBName)
		return nil
	},
}
