package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultShardURL   = "https://sky-shards.pages.dev"
	DefaultShardLang  = "zh-TW"
	DefaultNineBitURL = "https://9-bit.jp/skygold/"
	UserAgent         = "skydaily/1.0 (+https://github.com/pfrederiksen/skydaily)"
	Timeout           = 30 * time.Second
	DefaultRetries    = 3
	DefaultRetryWait  = 500 * time.Millisecond
	ForecastDays      = 7

	// maxBodySize caps how much of a page is read.
	maxBodySize = 8 << 20
)

// ErrNoQuestLink is returned when the 9-bit top page has no link to today's
// daily quest article.
var ErrNoQuestLink = errors.New("daily quest link not found")

// StatusError is a non-200 response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d (%s)", e.Code, e.URL)
}

// Options overrides the scraper defaults. Zero values keep the default.
type Options struct {
	ShardURL   string
	ShardLang  string
	NineBitURL string
	UserAgent  string
	Timeout    time.Duration
	Retries    int
	RetryWait  time.Duration
	Location   *time.Location
}

// Scraper fetches the shard site and the 9-bit site
type Scraper struct {
	client     *http.Client
	shardURL   string
	shardLang  string
	nineBitURL string
	userAgent  string
	retries    int
	retryWait  time.Duration
	location   *time.Location
}

// New creates a Scraper with the default sites and settings.
func New() *Scraper {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a Scraper, filling unset options with defaults.
func NewWithOptions(opts Options) *Scraper {
	s := &Scraper{
		client:     &http.Client{Timeout: Timeout},
		shardURL:   DefaultShardURL,
		shardLang:  DefaultShardLang,
		nineBitURL: DefaultNineBitURL,
		userAgent:  UserAgent,
		retries:    DefaultRetries,
		retryWait:  DefaultRetryWait,
		location:   time.Local,
	}

	if opts.ShardURL != "" {
		s.shardURL = opts.ShardURL
	}
	if opts.ShardLang != "" {
		s.shardLang = opts.ShardLang
	}
	if opts.NineBitURL != "" {
		s.nineBitURL = opts.NineBitURL
	}
	if opts.UserAgent != "" {
		s.userAgent = opts.UserAgent
	}
	if opts.Timeout > 0 {
		s.client.Timeout = opts.Timeout
	}
	if opts.Retries > 0 {
		s.retries = opts.Retries
	}
	if opts.RetryWait > 0 {
		s.retryWait = opts.RetryWait
	}
	if opts.Location != nil {
		s.location = opts.Location
	}

	return s
}

// get fetches url and returns the body, retrying transient failures.
func (s *Scraper) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", s.userAgent)
		req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,ja;q=0.8,en;q=0.7")

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("fetching page: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			statusErr := &StatusError{URL: url, Code: resp.StatusCode}
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.retryWait
	policy.MaxInterval = 10 * s.retryWait

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.retries)), ctx))
	if err != nil {
		return nil, err
	}
	return body, nil
}
