package main

import (
	"fmt"

	"court_transfer_app_go/config"
	"court_transfer_app_go/db"
	"court_transfer_app_go/logging"
	"court_transfer_app_go/models"
	"court_transfer_app_go/services"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrative tasks for the court transfer database",
	Long: `admin operates directly on the configured database (DB_DRIVER, DB_PATH,
DATABASE_URL, TURSO_DATABASE_URL). It migrates the schema before every command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		if _, err := logging.Init(cfg.Environment); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if err := db.Initialize(cfg); err != nil {
			return err
		}
		if err := db.AutoMigrate(models.All()...); err != nil {
			return err
		}
		return services.SeedReferenceData(db.DB)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		logging.Sync()
		return db.Close()
	},
}

func init() {
	rootCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(grantCmd)
	rootCmd.AddCommand(seedCmd)
}
