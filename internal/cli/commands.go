package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pfrederiksen/skydaily/internal/build"
	"github.com/pfrederiksen/skydaily/internal/calendar"
	"github.com/pfrederiksen/skydaily/internal/clock"
	"github.com/pfrederiksen/skydaily/internal/config"
	"github.com/pfrederiksen/skydaily/internal/logger"
	"github.com/pfrederiksen/skydaily/internal/publish"
	"github.com/pfrederiksen/skydaily/internal/render"
	"github.com/pfrederiksen/skydaily/internal/schedule"
	"github.com/pfrederiksen/skydaily/internal/storage"
	"github.com/pfrederiksen/skydaily/internal/web"
	"github.com/spf13/cobra"
)

const stopTimeout = 30 * time.Second

// env is what every command needs after configuration is resolved.
type env struct {
	cfg    *config.Config
	loc    *time.Location
	events []clock.EventDefinition
}

func (o *rootOptions) setup(cmd *cobra.Command) (*env, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	o.setupLogger(cmd, cfg)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	events, err := cfg.EventDefinitions()
	if err != nil {
		return nil, err
	}

	logger.Debug("Configuration loaded", logger.Fields{
		"config":   o.configPath,
		"timezone": cfg.Timezone,
		"output":   cfg.OutputDir,
		"events":   len(events),
	})
	return &env{cfg: cfg, loc: loc, events: events}, nil
}

// newBuilder wires the scraper, publisher and snapshot store. A nil
// publisher means "write to the configured output directory".
func (o *rootOptions) newBuilder(e *env, pub publish.Publisher) (*build.Builder, error) {
	sc, err := newScraper(e.cfg, e.loc)
	if err != nil {
		return nil, err
	}

	var store *storage.Storage
	if pub == nil {
		dir, err := config.ExpandHome(e.cfg.OutputDir)
		if err != nil {
			return nil, err
		}
		pub, err = publish.NewFilePublisher(dir)
		if err != nil {
			return nil, fmt.Errorf("initializing output: %w", err)
		}
		store, err = storage.New(e.cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initializing storage: %w", err)
		}
	}

	return build.New(build.Options{
		Fetcher:   sc,
		Publisher: pub,
		Storage:   store,
		Events:    e.events,
		Location:  e.loc,
		FeedDays:  e.cfg.FeedDays,
		Render:    render.Options{CalendarURL: build.CalendarFile},
		Now:       o.now,
	})
}

func newBuildCmd(opts *rootOptions) *cobra.Command {
	var (
		dryRun bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Collect today's data and publish the dashboard once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if output != "" {
				e.cfg.OutputDir = output
			}

			var pub publish.Publisher
			if dryRun {
				pub = publish.NewDryRunPublisher(cmd.OutOrStdout(), opts.verbose)
			}
			b, err := opts.newBuilder(e, pub)
			if err != nil {
				return err
			}

			result, err := b.Run(cmd.Context())
			if err != nil {
				return err
			}
			if opts.verbose {
				logger.DefaultMetrics().LogSnapshot(logger.Default(), "Build metrics")
			}
			return WriteBuildResult(cmd.OutOrStdout(), result, opts.verbose)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the artifacts instead of writing them")
	cmd.Flags().StringVar(&output, "output", "", "Output directory (overrides config)")
	return cmd
}

func newClockCmd(opts *rootOptions) *cobra.Command {
	var (
		format string
		at     string
		order  string
	)

	cmd := &cobra.Command{
		Use:   "clock",
		Short: "Print the next occurrence of every recurring event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := ParseFormat(format)
			if err != nil {
				return err
			}
			so, err := ParseSortOrder(order)
			if err != nil {
				return err
			}

			e, err := opts.setup(cmd)
			if err != nil {
				return err
			}

			now := opts.now()
			if at != "" {
				now, err = time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("invalid --at: %w", err)
				}
			}

			result := NewClockResult(now.In(e.loc), e.events, so)
			return WriteClock(cmd.OutOrStdout(), result, f, opts.verbose)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or legacy")
	cmd.Flags().StringVar(&at, "at", "", "Predict at this RFC3339 time instead of now")
	cmd.Flags().StringVar(&order, "sort", "time", "Sort order: time or name")
	return cmd
}

func newICSCmd(opts *rootOptions) *cobra.Command {
	var (
		days   int
		output string
	)

	cmd := &cobra.Command{
		Use:   "ics",
		Short: "Write the event clock as an iCalendar feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if days <= 0 {
				days = e.cfg.FeedDays
			}

			now := opts.now().In(e.loc)
			midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.loc)
			data, err := calendar.ClockFeed(midnight, days, e.events)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}

			pub, err := publish.NewFilePublisher(filepath.Dir(output))
			if err != nil {
				return err
			}
			if err := pub.Publish(filepath.Base(output), data); err != nil {
				return err
			}
			logger.Info("Calendar written", logger.Fields{"path": output, "days": days})
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Number of days to include (default from config)")
	cmd.Flags().StringVar(&output, "output", "", "Write to this file instead of stdout")
	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		listen         string
		noInitialBuild bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard and rebuild it on the refresh schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if listen != "" {
				e.cfg.Listen = listen
			}

			b, err := opts.newBuilder(e, nil)
			if err != nil {
				return err
			}

			runner, err := schedule.New(func(ctx context.Context) error {
				_, err := b.Run(ctx)
				return err
			}, schedule.Options{
				Spec:     e.cfg.RefreshCron,
				Location: e.loc,
				Logger:   logger.Default(),
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := runner.Start(!noInitialBuild); err != nil {
				return err
			}

			outputDir, err := config.ExpandHome(e.cfg.OutputDir)
			if err != nil {
				return err
			}
			srv := web.NewServer(web.Options{
				Listen:    e.cfg.Listen,
				OutputDir: outputDir,
				Location:  e.loc,
				Events:    e.events,
				FeedDays:  e.cfg.FeedDays,
				Now:       opts.now,
				Logger:    logger.Default(),
			})
			serveErr := srv.ListenAndServe(ctx)

			stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			defer cancel()
			stopErr := runner.Stop(stopCtx)
			logger.DefaultMetrics().LogSnapshot(logger.Default(), "Final metrics")

			return errors.Join(serveErr, stopErr)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config)")
	cmd.Flags().BoolVar(&noInitialBuild, "no-initial-build", false, "Wait for the first scheduled run instead of building at startup")
	return cmd
}
