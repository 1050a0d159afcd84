package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/pfrederiksen/skydaily/internal/config"
	"github.com/pfrederiksen/skydaily/internal/logger"
	"github.com/pfrederiksen/skydaily/internal/scraper"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// rootOptions carries the persistent flags to every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool

	// now is replaced in tests.
	now func() time.Time
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(time.Now)
}

func newRootCmd(now func() time.Time) *cobra.Command {
	opts := &rootOptions{now: now}

	cmd := &cobra.Command{
		Use:   "skydaily",
		Short: "Build the Sky: Children of the Light daily dashboard",
		Long: `A CLI tool that collects today's shard eruptions, candle rotations and
daily quests, predicts the recurring world events and publishes everything
as a static dashboard and an iCalendar feed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultPath, "Path to the YAML config file")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(
		newBuildCmd(opts),
		newClockCmd(opts),
		newICSCmd(opts),
		newServeCmd(opts),
	)
	return cmd
}

// loadConfig reads the config file, then .env and SKYDAILY_* overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setupLogger installs the default logger for cfg. --verbose forces debug.
func (o *rootOptions) setupLogger(cmd *cobra.Command, cfg *config.Config) {
	level := cfg.LogLevel
	if o.verbose {
		level = "debug"
	}
	l, err := logger.NewWithOptions(logger.Options{
		Level:       level,
		Environment: cfg.Environment,
		Output:      cmd.ErrOrStderr(),
	})
	logger.SetDefault(l)
	if err != nil {
		l.Warn("Invalid log level, using info", logger.Fields{"level": level})
	}
}

func newScraper(cfg *config.Config, loc *time.Location) (*scraper.Scraper, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	return scraper.NewWithOptions(scraper.Options{
		ShardURL:   cfg.ShardURL,
		ShardLang:  cfg.ShardLang,
		NineBitURL: cfg.NineBitURL,
		UserAgent:  cfg.UserAgent,
		Timeout:    timeout,
		Retries:    cfg.Retries,
		Location:   loc,
	}), nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}
