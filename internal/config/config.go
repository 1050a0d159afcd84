package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/pfrederiksen/skydaily/internal/clock"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath        = "~/.config/skydaily/config.yaml"
	DefaultTimezone    = "Asia/Taipei"
	DefaultOutputDir   = "./public"
	DefaultDataDir     = "~/.local/share/skydaily"
	DefaultListen      = "127.0.0.1:8080"
	DefaultRefreshCron = "*/30 * * * *"
	DefaultShardURL    = "https://sky-shards.pages.dev"
	DefaultShardLang   = "zh-TW"
	DefaultNineBitURL  = "https://9-bit.jp/skygold/"
	DefaultHTTPTimeout = "30s"
	DefaultRetries     = 3
	DefaultFeedDays    = 7
	DefaultLogLevel    = "info"
	DefaultEnvironment = "development"
)

// EventConfig is one row of the recurring event table.
type EventConfig struct {
	Name     string `yaml:"name" json:"name"`
	Minute   int    `yaml:"minute" json:"minute"`
	Duration string `yaml:"duration" json:"duration"` // Go duration, e.g. "10m"
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone the clock and the dashboard are shown in.
	Timezone string `yaml:"timezone" json:"timezone"`

	// OutputDir receives index.html and calendar.ics.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// DataDir holds the snapshot of the previous build.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// Listen is the HTTP listen address of `skydaily serve`.
	Listen string `yaml:"listen" json:"listen"`

	// RefreshCron is the standard 5-field cron spec for rebuilds.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	ShardURL    string `yaml:"shard_url" json:"shard_url"`
	ShardLang   string `yaml:"shard_lang" json:"shard_lang"`
	NineBitURL  string `yaml:"ninebit_url" json:"ninebit_url"`
	UserAgent   string `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	HTTPTimeout string `yaml:"http_timeout" json:"http_timeout"`
	Retries     int    `yaml:"retries" json:"retries"`

	// FeedDays is how many calendar days calendar.ics covers.
	FeedDays int `yaml:"feed_days" json:"feed_days"`

	LogLevel    string `yaml:"log_level" json:"log_level"`
	Environment string `yaml:"environment" json:"environment"`

	Events []EventConfig `yaml:"events" json:"events"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:    DefaultTimezone,
		OutputDir:   DefaultOutputDir,
		DataDir:     DefaultDataDir,
		Listen:      DefaultListen,
		RefreshCron: DefaultRefreshCron,
		ShardURL:    DefaultShardURL,
		ShardLang:   DefaultShardLang,
		NineBitURL:  DefaultNineBitURL,
		HTTPTimeout: DefaultHTTPTimeout,
		Retries:     DefaultRetries,
		FeedDays:    DefaultFeedDays,
		LogLevel:    DefaultLogLevel,
		Environment: DefaultEnvironment,
		Events:      defaultEventConfigs(),
	}
}

func defaultEventConfigs() []EventConfig {
	defs := clock.DefaultEvents()
	out := make([]EventConfig, 0, len(defs))
	for _, d := range defs {
		out = append(out, EventConfig{Name: d.Name, Minute: d.MinuteOfHour, Duration: d.Duration.String()})
	}
	return out
}

// Normalize fills in missing or zero values with defaults so that partially
// filled configs still behave.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.RefreshCron == "" {
		c.RefreshCron = DefaultRefreshCron
	}
	if c.ShardURL == "" {
		c.ShardURL = DefaultShardURL
	}
	if c.ShardLang == "" {
		c.ShardLang = DefaultShardLang
	}
	if c.NineBitURL == "" {
		c.NineBitURL = DefaultNineBitURL
	}
	if c.HTTPTimeout == "" {
		c.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.Retries <= 0 {
		c.Retries = DefaultRetries
	}
	if c.FeedDays <= 0 {
		c.FeedDays = DefaultFeedDays
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	c.LogLevel = strings.ToLower(c.LogLevel)
	if c.Environment == "" {
		c.Environment = DefaultEnvironment
	}
	c.Environment = strings.ToLower(c.Environment)
	if len(c.Events) == 0 {
		c.Events = defaultEventConfigs()
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", c.RefreshCron, err)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if _, err := c.EventDefinitions(); err != nil {
		return err
	}
	return nil
}

// Location loads the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Timeout parses HTTPTimeout.
func (c *Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid http_timeout %q: %w", c.HTTPTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("http_timeout must be positive, got %s", d)
	}
	return d, nil
}

// EventDefinitions converts the event table and validates it.
func (c *Config) EventDefinitions() ([]clock.EventDefinition, error) {
	defs := make([]clock.EventDefinition, 0, len(c.Events))
	for _, ev := range c.Events {
		d, err := time.ParseDuration(ev.Duration)
		if err != nil {
			return nil, fmt.Errorf("event %s: invalid duration %q: %w", ev.Name, ev.Duration, err)
		}
		defs = append(defs, clock.EventDefinition{Name: ev.Name, MinuteOfHour: ev.Minute, Duration: d})
	}
	if err := clock.ValidateEvents(defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist a default config is written there with 0600
// permissions and returned. Otherwise the YAML is read and normalized.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	path, err := ExpandHome(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, fmt.Errorf("writing default config: %w", err)
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600
// permissions, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	path, err := ExpandHome(path)
	if err != nil {
		return err
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".skydaily-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint:errcheck
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() // nolint:errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method delegating to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
