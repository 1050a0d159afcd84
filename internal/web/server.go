// Package web serves the published dashboard and the live event clock.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pfrederiksen/skydaily/internal/calendar"
	"github.com/pfrederiksen/skydaily/internal/clock"
	"github.com/pfrederiksen/skydaily/internal/daily"
	"github.com/pfrederiksen/skydaily/internal/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	maxFeedDays     = 31
	defaultFeedDays = 7
)

// Options configures a Server.
type Options struct {
	Listen    string
	OutputDir string
	Location  *time.Location
	Events    []clock.EventDefinition
	FeedDays  int
	Now       func() time.Time
	Logger    *logger.Logger
}

// Server exposes the dashboard files, /api/clock, /calendar.ics and /health.
type Server struct {
	opts Options
	mux  *http.ServeMux
	log  *logger.Logger
}

// NewServer constructs a Server with its routes registered.
func NewServer(opts Options) *Server {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if len(opts.Events) == 0 {
		opts.Events = clock.DefaultEvents()
	}
	if opts.FeedDays <= 0 {
		opts.FeedDays = defaultFeedDays
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	s := &Server{opts: opts, mux: http.NewServeMux(), log: opts.Logger}
	if s.log == nil {
		s.log = logger.Default()
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/clock", s.handleClock)
	s.mux.HandleFunc("/calendar.ics", s.handleCalendar)
	s.mux.Handle("/", s.staticFileServer())
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.opts.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", logger.Fields{"addr": ln.Addr().String()})
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// clockResponse is the JSON shape of /api/clock.
type clockResponse struct {
	Now      time.Time  `json:"now"`
	Timezone string     `json:"timezone"`
	Daylight bool       `json:"daylight"`
	Events   []eventDTO `json:"events"`
}

type eventDTO struct {
	Name         string    `json:"name"`
	Label        string    `json:"label"`
	Next         time.Time `json:"next"`
	End          time.Time `json:"end"`
	Active       bool      `json:"active"`
	SecondsUntil int       `json:"seconds_until"`
	Countdown    string    `json:"countdown"`
}

func (s *Server) handleClock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	now := s.opts.Now().In(s.opts.Location)
	occurrences := clock.Predict(now, s.opts.Events)

	switch r.URL.Query().Get("format") {
	case "", "json":
	case "legacy":
		writeJSON(w, http.StatusOK, clock.Legacy(occurrences))
		return
	default:
		writeError(w, http.StatusBadRequest, "format must be json or legacy")
		return
	}

	resp := clockResponse{
		Now:      now,
		Timezone: s.opts.Location.String(),
		Daylight: clock.DaylightOn(now),
	}
	// Keep the configured event order rather than map order.
	for _, ev := range s.opts.Events {
		occ, ok := occurrences[ev.Name]
		if !ok {
			continue
		}
		resp.Events = append(resp.Events, eventDTO{
			Name:         ev.Name,
			Label:        daily.EventLabel(ev.Name),
			Next:         occ.Next,
			End:          occ.End,
			Active:       occ.Active,
			SecondsUntil: occ.SecondsUntil(),
			Countdown:    clock.FormatCountdown(occ.Countdown),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	days := s.opts.FeedDays
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxFeedDays {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("days must be between 1 and %d", maxFeedDays))
			return
		}
		days = n
	}

	now := s.opts.Now().In(s.opts.Location)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	data, err := calendar.ClockFeed(midnight, days, s.opts.Events)
	if err != nil {
		s.log.Error("Building calendar feed failed", nil, err)
		writeError(w, http.StatusInternalServerError, "failed to build calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="calendar.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// staticFileServer serves the last published build from the output directory.
func (s *Server) staticFileServer() http.Handler {
	fileServer := http.FileServer(http.Dir(s.opts.OutputDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-cache")
		fileServer.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("HTTP request", logger.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		logger.IncrCounter("http.requests")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Error("Failed to write JSON response", nil, err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
