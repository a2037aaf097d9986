package main

import (
	"log"

	"github.com/anonto42/social-connect/backend/internal/router"
	"github.com/anonto42/social-connect/backend/pkg/config"
	"github.com/spf13/cobra"
)

// migrateCmd prepares the configured stores without serving traffic.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Creates indexes and tables for the configured storage backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		db, err := config.InitDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.CloseDB()

		if _, err := router.NewRepositories(cmd.Context(), cfg.StorageBackend, db); err != nil {
			return err
		}
		log.Printf("Storage backend %q is ready.", cfg.StorageBackend)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
