package commands

import (
	"log/slog"
	"time"

	"digicards/internal/components/chrono"
	"digicards/internal/components/telemetry"
	libtelemetry "digicards/lib/telemetry"
	"digicards/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var watchNow bool

func init() {
	watchCmd.Flags().BoolVar(&watchNow, "now", false, "Also run once right away.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Runs update and images on the configured cron schedule until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		a := openApp()
		defer a.Close()

		libtelemetry.InstrumentPerfStats(ctx, time.Second*30)

		tick := func() {
			report, err := runUpdate(ctx, a.service)
			if err != nil {
				slog.Error("update failed", "err", err)
				return
			}
			if report.UpToDate() {
				return
			}
			images, err := a.service.Images(ctx)
			if err != nil {
				slog.Error("images failed", "err", err)
				return
			}
			printImages(images.Report)

			stats := libtelemetry.SamplePerfStats(0)
			slog.Info(
				"resource usage",
				"cpu_percent", stats.CpuPercent,
				"rss_mb", stats.RssMb,
				"goroutines", stats.Goroutines,
			)
		}

		cron := chrono.NewStandardCron(telemetry.SlogAPI{}, time.Local)
		err := cron.Cron(cfg.Watch.Cron, tick)
		if err != nil {
			serviceutil.Fatal("invalid watch schedule", err)
		}
		slog.Info("watching for new collections", "schedule", cfg.Watch.Cron, "next", cron.Next())

		if watchNow {
			tick()
		}

		<-ctx.Done()
		slog.Info("stopping, waiting for the running job")
		<-cron.Stop().Done()
	},
}
