package commands

import (
	"context"
	"log/slog"

	"digicards/internal/ingest"
	"digicards/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(ctx context.Context, service ingest.Service) (ingest.UpdateReport, error) {
	report, err := service.Update(ctx)
	if len(report.Build.Collections) > 0 {
		printBuild(report.Run, report.Build)
	}
	if err != nil {
		return report, err
	}

	if report.UpToDate() {
		slog.Info("no new collections", "known", report.Known)
		return report, nil
	}
	for _, r := range report.Renames {
		slog.Warn(
			"collection may have been renamed",
			"known", r.Known.Name,
			"new", r.Fresh.Name,
			"similarity", r.Similarity,
		)
	}
	printFill(report.Fill)
	return report, nil
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Ingests the collections the catalog does not have yet.",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.Close()

		_, err := runUpdate(cmd.Context(), a.service)
		if err != nil {
			serviceutil.Fatal("update failed", err)
		}
	},
}
