package cmd

import (
	"github.com/spf13/cobra"
	"github.com/yeremiapane/table-booking/utils"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := open()
			if err != nil {
				return err
			}
			closeDB(db)
			utils.InfoLogger.Println("Database is up to date")
			return nil
		},
	}
}
