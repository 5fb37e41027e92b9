package commands

import (
	"context"
	"log/slog"
	"time"

	"digicards/internal/ingest"
	"digicards/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(imagesCmd)
}

// logProgress logs the asset pipeline's progress every `interval` until the returned function
// is called.
func logProgress(service ingest.Service, interval time.Duration) func() {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p := service.Progress()
				if p.Submitted == 0 {
					continue
				}
				slog.Info(
					"downloading images",
					"completed", p.Completed,
					"submitted", p.Submitted,
					"failed", p.Failed,
					"progress", percent(p.Completed, p.Submitted),
				)
			case <-ctx.Done():
				return
			}
		}
	}()
	return cancel
}

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Downloads the image of every card in the snapshot file as WebP.",
	Run: func(cmd *cobra.Command, args []string) {
		a := openApp()
		defer a.Close()

		stop := logProgress(a.service, time.Second*2)
		report, err := a.service.Images(cmd.Context())
		stop()
		if err != nil {
			serviceutil.Fatal("images failed", err)
		}
		printImages(report.Report)
	},
}
