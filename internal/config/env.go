package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SKYDAILY_"

// LoadDotEnv loads variables from the given .env files (".env" when none are
// given). Missing files are ignored and variables already set in the
// environment are never overridden.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// ApplyEnv overrides fields from SKYDAILY_* environment variables.
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		"TIMEZONE":     &c.Timezone,
		"OUTPUT_DIR":   &c.OutputDir,
		"DATA_DIR":     &c.DataDir,
		"LISTEN":       &c.Listen,
		"REFRESH":      &c.RefreshCron,
		"SHARD_URL":    &c.ShardURL,
		"NINEBIT_URL":  &c.NineBitURL,
		"USER_AGENT":   &c.UserAgent,
		"HTTP_TIMEOUT": &c.HTTPTimeout,
		"LOG_LEVEL":    &c.LogLevel,
		"ENVIRONMENT":  &c.Environment,
	}
	for key, field := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && strings.TrimSpace(v) != "" {
			*field = strings.TrimSpace(v)
		}
	}

	ints := map[string]*int{
		"RETRIES":   &c.Retries,
		"FEED_DAYS": &c.FeedDays,
	}
	for key, field := range ints {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return &EnvError{Key: EnvPrefix + key, Value: v, Err: err}
		}
		*field = n
	}

	c.Normalize()
	return nil
}

// EnvError is an environment override that could not be parsed.
type EnvError struct {
	Key   string
	Value string
	Err   error
}

func (e *EnvError) Error() string {
	return "invalid " + e.Key + "=" + strconv.Quote(e.Value) + ": " + e.Err.Error()
}

func (e *EnvError) Unwrap() error {
	return e.Err
}
