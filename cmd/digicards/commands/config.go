package commands

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"digicards/internal/assets"
	"digicards/internal/source"
	"digicards/lib/configutil"
	configlibsql "digicards/lib/configutil/libsql"
	"digicards/lib/telemetry"

	"github.com/joho/godotenv"
)

type SourceConfig struct {
	BaseUrl           string  `json:"base_url"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	CloudflareBypass  bool    `json:"cloudflare_bypass"`
}

type AssetsConfig struct {
	Dir     string `json:"dir"`
	Workers int    `json:"workers"`
}

type WatchConfig struct {
	Cron string `json:"cron"`
}

type Config struct {
	Database     configlibsql.Struct `json:"database"`
	Source       SourceConfig        `json:"source"`
	SnapshotPath string              `json:"snapshot_path"`
	Assets       AssetsConfig        `json:"assets"`
	Watch        WatchConfig         `json:"watch"`
	Telemetry    telemetry.Config    `json:"telemetry"`
}

const (
	defaultDatabaseFile = "data/digicards.db"
	defaultSnapshotPath = "temp/DigimonCards.csv"
	defaultAssetDir     = "img"
	defaultWatchCron    = "@daily"
	defaultTimeout      = 30
)

func (c *Config) applyDefaults() {
	if c.Database.File == "" && c.Database.Url == "" {
		c.Database.File = defaultDatabaseFile
	}
	if c.Source.BaseUrl == "" {
		c.Source.BaseUrl = source.DefaultBaseUrl
	}
	if c.Source.TimeoutSeconds <= 0 {
		c.Source.TimeoutSeconds = defaultTimeout
	}
	if c.SnapshotPath == "" {
		c.SnapshotPath = defaultSnapshotPath
	}
	if c.Assets.Dir == "" {
		c.Assets.Dir = defaultAssetDir
	}
	if c.Assets.Workers <= 0 {
		c.Assets.Workers = assets.DefaultWorkers
	}
	if c.Watch.Cron == "" {
		c.Watch.Cron = defaultWatchCron
	}
}

func (c Config) sourceOptions(dumpDir string) source.Options {
	return source.Options{
		BaseUrl:           c.Source.BaseUrl,
		Timeout:           time.Duration(c.Source.TimeoutSeconds) * time.Second,
		RequestsPerSecond: c.Source.RequestsPerSecond,
		CloudflareBypass:  c.Source.CloudflareBypass,
		DumpDir:           dumpDir,
	}
}

// loadConfig reads `.env` (if any) into the environment, then the config at `path`. A missing
// config file is not an error, every value has a default.
func loadConfig(path string) (Config, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	// a bare file name is looked up from the working directory upwards
	read := configutil.ReadConfig[Config]
	if filepath.Base(path) == path {
		read = configutil.ReadRecursively[Config]
	}
	cfg, err := read(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("no config file found, using defaults", "path", path)
		err = nil
	}
	if err != nil {
		return Config{}, err
	}

	cfg.applyDefaults()
	return cfg, nil
}
