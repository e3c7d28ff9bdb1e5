package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"food-ordering-api/config"
)

var Version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:     "food-ordering-api",
	Short:   "Food ordering backend for customers, restaurants and admins",
	Version: Version,
	// Running the binary without a subcommand starts the server.
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, configures logging and opens a migrated database.
func bootstrap() (*config.Config, *logrus.Logger, *gorm.DB, error) {
	cfg := config.Load()
	log := config.SetupLogger(cfg)
	db, err := config.OpenDB(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := config.Migrate(db); err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}
