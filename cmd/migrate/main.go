package main

import (
	"log"
	"os"

	"learn-persona/internal/config"
	"learn-persona/internal/database"
	"learn-persona/internal/logger"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var db *sqlx.DB
	var cfg *config.Config

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply or roll back the database schema",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.LoadConfig(); err != nil {
				return err
			}
			if err := logger.Initialize(cfg.Logger); err != nil {
				return err
			}
			db, err = database.Connect(cfg)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if db != nil {
				db.Close()
			}
			_ = logger.Sync()
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.RunMigrations(db, cfg.DB.Driver); err != nil {
				return err
			}
			logger.Get().Info("Migrations applied", zap.String("driver", cfg.DB.Driver))
			return nil
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.RollbackMigrations(db, cfg.DB.Driver); err != nil {
				return err
			}
			logger.Get().Info("Migrations rolled back", zap.String("driver", cfg.DB.Driver))
			return nil
		},
	})

	if err := root.Execute(); err != nil {
		log.Printf("migrate failed: %v", err)
		os.Exit(1)
	}
}
