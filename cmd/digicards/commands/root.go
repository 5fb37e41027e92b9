package commands

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"digicards/internal/assets"
	"digicards/internal/components/telemetry"
	"digicards/internal/db"
	"digicards/internal/ingest"
	"digicards/internal/source"
	"digicards/internal/store"
	libtelemetry "digicards/lib/telemetry"
	"digicards/lib/util/serviceutil"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	dumpPages  string
)

// loaded by the root command before any subcommand runs
var (
	cfg    Config
	otelTp libtelemetry.Telemetry
)

var rootCmd = &cobra.Command{
	Use:   "digicards",
	Short: "digicards ingests the Digimon card list into a local catalog.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initSlog(verbose)

		var err error
		cfg, err = loadConfig(configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		otelTp, err = libtelemetry.Setup(cmd.Context(), "digicards", cfg.Telemetry)
		if err != nil {
			serviceutil.Fatal("failed to setup telemetry", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
		defer cancel()
		err := otelTp.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json5", "The config file to read.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug messages.")
	rootCmd.PersistentFlags().StringVar(&dumpPages, "dump-pages", "", "Write every fetched page to this directory.")
}

func initSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
}

func ExecuteContext(ctx context.Context) {
	ctx, cancel := serviceutil.SignalContext(ctx)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is everything a command needs, built from the loaded config.
type app struct {
	db      *sql.DB
	service ingest.Service
}

func (a app) Close() {
	err := a.db.Close()
	if err != nil {
		slog.Warn("failed to close db", "err", err)
	}
}

func openApp() app {
	tel := telemetry.SlogAPI{}

	database, err := cfg.Database.OpenDB(db.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}
	slog.Debug("database opened", "location", cfg.Database.Describe())

	client, err := source.NewClient(cfg.sourceOptions(dumpPages), tel)
	if err != nil {
		serviceutil.Fatal("failed to create source client", err)
	}

	pipeline, err := assets.NewPipeline(client, assets.Options{
		Dir:     cfg.Assets.Dir,
		Workers: cfg.Assets.Workers,
	}, tel)
	if err != nil {
		serviceutil.Fatal("failed to create asset pipeline", err)
	}

	service := ingest.NewService(client, store.NewStore(database, tel), pipeline, ingest.Options{
		NavigationUrl: cfg.Source.BaseUrl,
		SnapshotPath:  cfg.SnapshotPath,
	}, tel)

	return app{
		db:      database,
		service: service,
	}
}
