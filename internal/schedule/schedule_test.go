package schedule

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pfrederiksen/skydaily/internal/logger"
)

func testLogger() (*logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logger.New(logger.LevelDebug, &buf), &buf
}

func TestNewValidation(t *testing.T) {
	job := func(ctx context.Context) error { return nil }

	tests := []struct {
		name    string
		job     Job
		spec    string
		wantErr bool
	}{
		{"default spec", job, "*/30 * * * *", false},
		{"descriptor", job, "@hourly", false},
		{"bad spec", job, "every now and then", true},
		{"six fields", job, "0 */30 * * * *", true},
		{"nil job", nil, "@hourly", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.job, Options{Spec: tt.spec})
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStartRunNow(t *testing.T) {
	l, _ := testLogger()
	ran := make(chan struct{}, 1)

	r, err := New(func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("job context should carry a deadline")
		}
		ran <- struct{}{}
		return nil
	}, Options{Spec: "@hourly", Location: time.UTC, Logger: l})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := r.Start(true); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run immediately")
	}

	next := r.Next()
	if next.IsZero() || next.Minute() != 0 || next.Location().String() != "UTC" {
		t.Errorf("Next() = %v, want the top of an hour in UTC", next)
	}

	if err := r.Stop(context.Background()); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestStartWithoutRunNow(t *testing.T) {
	l, _ := testLogger()
	var runs int32

	r, err := New(func(ctx context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}, Options{Spec: "@hourly", Logger: l})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := r.Start(false); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if err := r.Stop(context.Background()); err != nil {
		t.Errorf("Stop() error = %v", err)
	}

	if got := atomic.LoadInt32(&runs); got != 0 {
		t.Errorf("job ran %d times, want 0", got)
	}
}

func TestScheduledRun(t *testing.T) {
	l, _ := testLogger()
	ran := make(chan struct{}, 4)

	r, err := New(func(ctx context.Context) error {
		ran <- struct{}{}
		return nil
	}, Options{Spec: "@every 1s", Logger: l})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := r.Start(false); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer r.Stop(context.Background())

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled job never ran")
	}
}

func TestJobErrorIsLogged(t *testing.T) {
	l, buf := testLogger()
	done := make(chan struct{})

	r, err := New(func(ctx context.Context) error {
		defer close(done)
		return errors.New("upstream unavailable")
	}, Options{Spec: "@hourly", Logger: l})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := r.Start(true); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	<-done
	if err := r.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	if !strings.Contains(buf.String(), "upstream unavailable") {
		t.Errorf("log output missing job error:\n%s", buf.String())
	}
}

func TestJobTimeout(t *testing.T) {
	l, _ := testLogger()
	got := make(chan error, 1)

	r, err := New(func(ctx context.Context) error {
		<-ctx.Done()
		got <- ctx.Err()
		return ctx.Err()
	}, Options{Spec: "@hourly", Timeout: 20 * time.Millisecond, Logger: l})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := r.Start(true); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer r.Stop(context.Background())

	select {
	case err := <-got:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("job ctx error = %v, want deadline exceeded", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("job was not timed out")
	}
}

func TestStopTimesOut(t *testing.T) {
	l, _ := testLogger()
	started := make(chan struct{})
	release := make(chan struct{})

	r, err := New(func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}, Options{Spec: "@hourly", Logger: l})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := r.Start(true); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := r.Stop(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Stop() error = %v, want deadline exceeded", err)
	}
	close(release)
}
