package commands

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initDbCmd)
}

var initDbCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Creates the catalog tables if they do not exist yet.",
	Run: func(cmd *cobra.Command, args []string) {
		// the schema is applied when the database is opened
		a := openApp()
		defer a.Close()
		slog.Info("database structure created", "location", cfg.Database.Describe())
	},
}
