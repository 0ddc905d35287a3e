package cmd

import (
	"github.com/spf13/cobra"
	"github.com/yeremiapane/queue-app/database"
	"github.com/yeremiapane/queue-app/utils"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert default users, tables and settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			if err := database.Seed(a.db); err != nil {
				return err
			}
			utils.InfoLogger.Printf("Seed complete; accounts use password %q", database.DefaultSeedPassword)
			return nil
		},
	}
}
