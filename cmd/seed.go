package cmd

import (
	"github.com/spf13/cobra"

	"food-ordering-api/config"
)

var seedCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the admin account from ADMIN_EMAIL and ADMIN_PASSWORD",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, db, err := bootstrap()
		if err != nil {
			return err
		}
		return config.SeedAdmin(db, cfg)
	},
}
