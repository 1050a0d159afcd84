package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// testScraper points both sites at server with fast retries.
func testScraper(serverURL string) *Scraper {
	return NewWithOptions(Options{
		ShardURL:   serverURL,
		NineBitURL: serverURL + "/skygold/",
		Retries:    2,
		RetryWait:  time.Millisecond,
		Location:   time.UTC,
	})
}

func TestNewWithOptions_Defaults(t *testing.T) {
	s := New()

	if s.shardURL != DefaultShardURL || s.shardLang != DefaultShardLang {
		t.Errorf("shard site = %s/%s", s.shardURL, s.shardLang)
	}
	if s.nineBitURL != DefaultNineBitURL {
		t.Errorf("nineBitURL = %s", s.nineBitURL)
	}
	if s.client.Timeout != Timeout {
		t.Errorf("timeout = %s, want %s", s.client.Timeout, Timeout)
	}
	if s.retries != DefaultRetries {
		t.Errorf("retries = %d, want %d", s.retries, DefaultRetries)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int // one per attempt, last one repeats
		wantErr    bool
		wantStatus int
		wantHits   int32
	}{
		{name: "ok", statuses: []int{http.StatusOK}, wantHits: 1},
		{name: "retries server errors", statuses: []int{http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusOK}, wantHits: 3},
		{name: "gives up after retries", statuses: []int{http.StatusInternalServerError}, wantErr: true, wantStatus: http.StatusInternalServerError, wantHits: 3},
		{name: "client errors are permanent", statuses: []int{http.StatusNotFound}, wantErr: true, wantStatus: http.StatusNotFound, wantHits: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := int(atomic.AddInt32(&hits, 1)) - 1
				if n >= len(tt.statuses) {
					n = len(tt.statuses) - 1
				}
				if got := r.Header.Get("User-Agent"); got != UserAgent {
					t.Errorf("User-Agent = %q, want %q", got, UserAgent)
				}
				w.WriteHeader(tt.statuses[n])
				w.Write([]byte("body")) // nolint:errcheck
			}))
			defer server.Close()

			body, err := testScraper(server.URL).get(context.Background(), server.URL)

			if tt.wantErr {
				var statusErr *StatusError
				if !errors.As(err, &statusErr) {
					t.Fatalf("get() error = %v, want *StatusError", err)
				}
				if statusErr.Code != tt.wantStatus {
					t.Errorf("status = %d, want %d", statusErr.Code, tt.wantStatus)
				}
			} else {
				if err != nil {
					t.Fatalf("get() unexpected error: %v", err)
				}
				if string(body) != "body" {
					t.Errorf("body = %q", body)
				}
			}

			if got := atomic.LoadInt32(&hits); got != tt.wantHits {
				t.Errorf("server hit %d times, want %d", got, tt.wantHits)
			}
		})
	}
}

func TestGet_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := testScraper(server.URL).get(ctx, server.URL); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestGet_CustomUserAgent(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	s := NewWithOptions(Options{UserAgent: "custom/2.0"})
	if _, err := s.get(context.Background(), server.URL); err != nil {
		t.Fatalf("get() error = %v", err)
	}
	if got != "custom/2.0" {
		t.Errorf("User-Agent = %q", got)
	}
}
