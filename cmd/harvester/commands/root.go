package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"waybackseller/internal/config"
	"waybackseller/internal/logger"
)

var (
	configFile string
	envFile    string
	logLevel   string
	sinkKind   string
	domain     string
	timeFrame  string
	allTime    bool
)

var rootCmd = &cobra.Command{
	Use:           "harvester",
	Short:         "harvester collects seller ids from Wayback Machine captures.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "Path to YAML configuration file")
	flags.StringVar(&envFile, "env-file", ".env", "Dotenv file to load before reading the environment")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	flags.StringVar(&sinkKind, "sink", "", "Record sink: csv, d1 or sql (overrides config)")
	flags.StringVar(&domain, "domain", "", "Domain pattern to search for (overrides config)")
	flags.StringVar(&timeFrame, "time-frame", "", "Time frame selector index, see 'harvester windows' (overrides config)")
	flags.BoolVar(&allTime, "all-time", false, "Search all captures, ignoring the time frame")
}

// ExecuteContext runs the root command and exits non-zero on error.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration once: defaults, file, dotenv,
// environment, then flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load(configFile, os.LookupEnv)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}

	if flags.Changed("sink") {
		cfg.Sink.Kind = sinkKind
	}

	if flags.Changed("domain") {
		cfg.Harvest.Domain = domain
	}

	if flags.Changed("time-frame") {
		cfg.Harvest.TimeFrame = timeFrame
	}

	if flags.Changed("all-time") {
		cfg.Harvest.AllTime = allTime
	}

	return cfg, nil
}

// loadValidConfig is loadConfig followed by validation. Its errors abort
// before any network activity.
func loadValidConfig(cmd *cobra.Command) (config.Config, *logger.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return config.Config{}, nil, err
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	return cfg, log, nil
}
