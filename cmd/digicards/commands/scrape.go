package commands

import (
	"log/slog"

	"digicards/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes every collection on the site into the snapshot file.",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.Close()

		report, err := a.service.Scrape(cmd.Context())
		if len(report.Build.Collections) > 0 {
			printBuild(report.Run, report.Build)
		}
		if err != nil {
			serviceutil.Fatal("scrape failed", err)
		}
		slog.Info("snapshot written", "path", cfg.SnapshotPath, "cards", len(report.Snapshot))
	},
}
