package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"jbmap/internal/config"
	"jbmap/internal/logging"
	"jbmap/internal/match"
	"jbmap/internal/storage"
)

var (
	cfgPath   string
	dbPath    string
	threshold int
	workers   int
	logLevel  string
	logFormat string

	// Effective settings, resolved before any subcommand runs.
	cfg    *config.Config
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "jbmap",
	Short: "Fuzzy lookup over metric spaces",
	Long: `jbmap indexes values in a BK-tree and answers "what is close to this?"
queries without comparing against everything.

It ships two applications of the same index:
  words   fuzzy dictionary lookup under edit distance
  images  near-duplicate image detection under Hamming distance of pHashes

Example usage:
  jbmap words import /usr/share/dict/words
  jbmap words suggest recieve --radius 2 --explain
  jbmap images scan ./photos
  jbmap images clean --dry-run`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return fang.Execute(ctx, rootCmd)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgPath, "config", config.DefaultPath(), "Path to config file")
	pf.StringVar(&dbPath, "db", "", "Path to SQLite database (default from config)")
	pf.IntVar(&threshold, "threshold", match.DefaultThreshold, "Hamming distance threshold (0-64, lower = stricter)")
	pf.IntVar(&workers, "workers", 8, "Number of parallel workers for scanning")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "", "Log format: text or json")
}

// setup loads the config file and applies explicitly set flags on top.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		c.DBPath = dbPath
	}
	if flags.Changed("threshold") {
		c.Threshold = threshold
	}
	if flags.Changed("workers") {
		c.Workers = workers
	}
	if flags.Changed("log-level") {
		c.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		c.Log.Format = logFormat
	}
	if err := c.Validate(); err != nil {
		return err
	}

	l, err := logging.New(cmd.ErrOrStderr(), c.Log.Level, c.Log.Format)
	if err != nil {
		return err
	}

	cfg, logger = c, l
	slog.SetDefault(l)
	logger.Debug("config loaded", "path", cfgPath, "db", cfg.DBPath)
	return nil
}

func openStore() (*storage.Storage, error) {
	store, err := storage.NewStorage(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}
