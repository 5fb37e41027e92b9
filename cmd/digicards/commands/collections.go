package commands

import (
	"digicards/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(collectionsCmd)
}

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "Lists the collections on the site and whether the catalog has them.",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.Close()

		statuses, err := a.service.Collections(cmd.Context())
		if err != nil {
			serviceutil.Fatal("failed to list collections", err)
		}
		printCollections(statuses)
	},
}
