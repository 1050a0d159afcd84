// Package build runs one dashboard build: collect, render, publish, record.
package build

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/pfrederiksen/skydaily/internal/calendar"
	"github.com/pfrederiksen/skydaily/internal/clock"
	"github.com/pfrederiksen/skydaily/internal/daily"
	"github.com/pfrederiksen/skydaily/internal/logger"
	"github.com/pfrederiksen/skydaily/internal/publish"
	"github.com/pfrederiksen/skydaily/internal/render"
	"github.com/pfrederiksen/skydaily/internal/storage"
)

// Artifact names written on every build.
const (
	IndexFile    = "index.html"
	CalendarFile = "calendar.ics"
	ReportFile   = "report.json"
)

// DefaultFeedDays is used when Options.FeedDays is not positive.
const DefaultFeedDays = 7

// Fetcher collects the scraped sections of a report. *scraper.Scraper
// satisfies it.
type Fetcher interface {
	FetchShardForecast(ctx context.Context, now time.Time) (*daily.Shard, error)
	FetchDailies(ctx context.Context, now time.Time) (*daily.Dailies, error)
}

// Options configures a Builder. Fetcher and Publisher are required.
type Options struct {
	Fetcher   Fetcher
	Publisher publish.Publisher
	// Storage keeps the snapshot used for change detection; nil skips it.
	Storage *storage.Storage

	Events   []clock.EventDefinition
	Location *time.Location
	FeedDays int
	Render   render.Options

	// Now defaults to time.Now.
	Now     func() time.Time
	Logger  *logger.Logger
	Metrics *logger.Metrics
}

// Builder produces and publishes the dashboard artifacts.
type Builder struct {
	fetcher   Fetcher
	publisher publish.Publisher
	store     *storage.Storage
	events    []clock.EventDefinition
	location  *time.Location
	feedDays  int
	render    render.Options
	now       func() time.Time
	log       *logger.Logger
	metrics   *logger.Metrics
}

// Result describes a finished build.
type Result struct {
	Report    *daily.Report
	Changes   []*daily.SectionChange
	Artifacts []string
}

// New validates opts and returns a Builder.
func New(opts Options) (*Builder, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("build: fetcher is required")
	}
	if opts.Publisher == nil {
		return nil, fmt.Errorf("build: publisher is required")
	}

	events := opts.Events
	if len(events) == 0 {
		events = clock.DefaultEvents()
	}
	if err := clock.ValidateEvents(events); err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}

	b := &Builder{
		fetcher:   opts.Fetcher,
		publisher: opts.Publisher,
		store:     opts.Storage,
		events:    events,
		location:  opts.Location,
		feedDays:  opts.FeedDays,
		render:    opts.Render,
		now:       opts.Now,
		log:       opts.Logger,
		metrics:   opts.Metrics,
	}
	if b.location == nil {
		b.location = time.Local
	}
	if b.feedDays <= 0 {
		b.feedDays = DefaultFeedDays
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.log == nil {
		b.log = logger.Default()
	}
	if b.metrics == nil {
		b.metrics = logger.DefaultMetrics()
	}
	return b, nil
}

// Run performs one build. Scraping failures leave the section nil and are
// only logged; rendering, publishing and snapshot failures are returned.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	now := b.now().In(b.location)
	b.metrics.IncrCounter("build.runs")

	report, err := b.collect(ctx, now)
	if err != nil {
		b.metrics.IncrCounter("build.failures")
		return nil, err
	}

	artifacts, err := b.artifacts(report)
	if err != nil {
		b.metrics.IncrCounter("build.failures")
		return nil, err
	}

	result := &Result{Report: report}
	for _, a := range artifacts {
		if err := b.publisher.Publish(a.name, a.data); err != nil {
			b.metrics.IncrCounter("build.failures")
			return nil, fmt.Errorf("publishing %s: %w", a.name, err)
		}
		result.Artifacts = append(result.Artifacts, a.name)
	}

	if b.store != nil {
		changes, err := b.store.RecordReport(report)
		if err != nil {
			b.metrics.IncrCounter("build.failures")
			return result, fmt.Errorf("recording snapshot: %w", err)
		}
		result.Changes = changes
		b.logChanges(changes)
	}

	elapsed := time.Since(started)
	b.metrics.RecordTiming("build.duration", elapsed)
	b.metrics.SetGauge("build.last_success", float64(now.Unix()))
	b.log.Info("Build complete", logger.Fields{
		"artifacts":   len(result.Artifacts),
		"changes":     len(result.Changes),
		"shard":       report.Shard != nil,
		"dailies":     report.Dailies != nil,
		"duration_ms": elapsed.Milliseconds(),
	})
	return result, nil
}

// collect computes the clock and fetches both scraped sections concurrently.
func (b *Builder) collect(ctx context.Context, now time.Time) (*daily.Report, error) {
	// Tomorrow's slots let an open dashboard keep counting past midnight.
	schedule, err := clock.Schedule(now, 2, b.events)
	if err != nil {
		return nil, fmt.Errorf("building schedule: %w", err)
	}

	report := &daily.Report{
		GeneratedAt: now,
		Clock:       clock.Predict(now, b.events),
		Schedule:    schedule,
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		start := time.Now()
		shard, err := b.fetcher.FetchShardForecast(ctx, now)
		if b.track("shard", start, err) {
			report.Shard = shard
		}
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		dailies, err := b.fetcher.FetchDailies(ctx, now)
		if b.track("dailies", start, err) {
			report.Dailies = dailies
		}
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build canceled: %w", err)
	}
	return report, nil
}

// track records a fetch and reports whether it succeeded.
func (b *Builder) track(section string, start time.Time, err error) bool {
	b.metrics.RecordTiming("fetch."+section, time.Since(start))
	if err != nil {
		b.metrics.IncrCounter("fetch." + section + ".errors")
		b.log.Error("Fetch failed", logger.Fields{"section": section}, err)
		return false
	}
	b.metrics.IncrCounter("fetch." + section + ".success")
	return true
}

type artifact struct {
	name string
	data []byte
}

func (b *Builder) artifacts(report *daily.Report) ([]artifact, error) {
	var page bytes.Buffer
	if err := render.Dashboard(&page, report, b.render); err != nil {
		return nil, fmt.Errorf("rendering dashboard: %w", err)
	}

	now := report.GeneratedAt
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	feed := calendar.NewFeed(now)
	if err := feed.AddClock(midnight, b.feedDays, b.events); err != nil {
		return nil, fmt.Errorf("building calendar: %w", err)
	}
	feed.AddShard(report.Shard)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding report: %w", err)
	}

	return []artifact{
		{name: IndexFile, data: page.Bytes()},
		{name: CalendarFile, data: feed.Bytes()},
		{name: ReportFile, data: data},
	}, nil
}

func (b *Builder) logChanges(changes []*daily.SectionChange) {
	if len(changes) == 0 {
		b.log.Debug("No changes since last build", nil)
		return
	}
	for _, c := range changes {
		b.log.Info("Section changed", logger.Fields{
			"section": c.Section,
			"type":    c.ChangeType,
			"old":     c.OldValue,
			"new":     c.NewValue,
		})
	}
	b.metrics.SetGauge("build.changes", float64(len(changes)))
}
