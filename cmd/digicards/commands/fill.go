package commands

import (
	"digicards/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(fillCmd)
}

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Loads the snapshot file into the catalog, cards already stored are left as is.",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.Close()

		report, err := a.service.Fill(cmd.Context())
		if err != nil {
			serviceutil.Fatal("fill failed", err)
		}
		printFill(report.FillReport)
	},
}
