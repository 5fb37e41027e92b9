package commands

import (
	"time"

	"digicards/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Creates the catalog, scrapes every collection, fills the catalog and downloads every image.",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.Close()

		stop := logProgress(a.service, time.Second*2)
		report, err := a.service.RunAll(cmd.Context())
		stop()
		if len(report.Scrape.Build.Collections) > 0 {
			printBuild(report.Run, report.Scrape.Build)
		}
		if err != nil {
			serviceutil.Fatal("run failed", err)
		}
		printFill(report.Fill)
		printImages(report.Images)
	},
}
