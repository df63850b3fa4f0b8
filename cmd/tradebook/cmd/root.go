package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rustyeddy/tradebook/config"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "tradebook.yaml"

var rootCmd = &cobra.Command{
	Use:   "tradebook",
	Short: "Rebuild trades from broker fills and track the restart throttle",
	Long: `Tradebook turns a broker's execution history into trades and tells you
how much of your account you may risk on the next one.

It provides tools for:
  - Reconstructing trades from fills (average cost, FIFO lots, flips)
  - Inferring stops and targets for open positions from resting orders
  - The HIGH/LOW restart throttle with win/loss forecasts
  - A daily equity and drawdown series
  - Win rate, profit factor and streak statistics
  - A SQLite or CSV trade journal

Complete documentation is available at https://github.com/rustyeddy/tradebook`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	cfgFile   string
	envFile   string
	logLevel  string
	logFormat string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./"+defaultConfigFile+" if present)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file loaded before the config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error (default from TRADEBOOK_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "console or json (default from TRADEBOOK_LOG_FORMAT)")
}

func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	if !cmd.Flags().Changed("log-level") {
		logLevel = envOr("TRADEBOOK_LOG_LEVEL", "info")
	}
	if !cmd.Flags().Changed("log-format") {
		logFormat = envOr("TRADEBOOK_LOG_FORMAT", "console")
	}
	return setupLogging(cmd.ErrOrStderr())
}

func setupLogging(w io.Writer) error {
	lvl, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	switch logFormat {
	case "json":
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	default:
		return fmt.Errorf("log format %q: want console or json", logFormat)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return nil
}

// loadConfig reads --config, or ./tradebook.yaml when it exists, or the
// defaults. Environment overrides apply in every case.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		log.Debug().Str("path", path).Msg("loading config")
		return config.LoadFromFile(path)
	}

	cfg := config.Default()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
