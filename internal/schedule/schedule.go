// Package schedule runs the dashboard build on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pfrederiksen/skydaily/internal/logger"
	"github.com/robfig/cron/v3"
)

// DefaultTimeout bounds a single job run.
const DefaultTimeout = 5 * time.Minute

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Options configures a Runner.
type Options struct {
	Spec     string // standard 5-field cron spec or descriptor
	Location *time.Location
	Timeout  time.Duration
	Logger   *logger.Logger
}

// Runner triggers a Job on a cron schedule. A trigger that fires while the
// previous run is still going is skipped.
type Runner struct {
	cron    *cron.Cron
	spec    string
	job     Job
	timeout time.Duration
	log     *logger.Logger

	entry cron.EntryID
	wg    sync.WaitGroup
}

// New parses the schedule and returns a stopped Runner.
func New(job Job, opts Options) (*Runner, error) {
	if job == nil {
		return nil, fmt.Errorf("schedule: job is required")
	}
	if _, err := cron.ParseStandard(opts.Spec); err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", opts.Spec, err)
	}

	r := &Runner{
		spec:    opts.Spec,
		job:     job,
		timeout: opts.Timeout,
		log:     opts.Logger,
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.log == nil {
		r.log = logger.Default()
	}

	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	cl := cronLogger{r.log}
	r.cron = cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	return r, nil
}

// Start registers the job and starts the scheduler. With runNow the job also
// runs once immediately, in the background.
func (r *Runner) Start(runNow bool) error {
	id, err := r.cron.AddFunc(r.spec, r.run)
	if err != nil {
		return fmt.Errorf("adding job: %w", err)
	}
	r.entry = id
	r.cron.Start()

	r.log.Info("Scheduler started", logger.Fields{
		"spec": r.spec,
		"next": r.Next().Format(time.RFC3339),
	})

	if runNow {
		wrapped := r.cron.Entry(id).WrappedJob
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			wrapped.Run()
		}()
	}
	return nil
}

// Next returns the next scheduled run, or the zero time before Start.
func (r *Runner) Next() time.Time {
	return r.cron.Entry(r.entry).Next
}

// Stop halts the scheduler and waits for running jobs until ctx is done.
func (r *Runner) Stop(ctx context.Context) error {
	r.log.Info("Stopping scheduler", nil)
	stopped := r.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-stopped.Done()
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.log.Info("Scheduler stopped", nil)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for running jobs: %w", ctx.Err())
	}
}

func (r *Runner) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	start := time.Now()
	if err := r.job(ctx); err != nil {
		r.log.Error("Scheduled job failed", logger.Fields{
			"duration_ms": time.Since(start).Milliseconds(),
		}, err)
		return
	}
	r.log.Debug("Scheduled job finished", logger.Fields{
		"duration_ms": time.Since(start).Milliseconds(),
	})
}

// cronLogger adapts Logger to cron.Logger.
type cronLogger struct {
	l *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, kvFields(keysAndValues), err)
}

func kvFields(kv []interface{}) logger.Fields {
	fields := logger.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return fields
}
