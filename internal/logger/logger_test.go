package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := New(LevelInfo, &buf)

	tests := []struct {
		name    string
		level   Level
		message string
		fields  Fields
		err     error
		want    bool // should log
	}{
		{
			name:    "info message",
			level:   LevelInfo,
			message: "test message",
			fields:  Fields{"key": "value"},
			want:    true,
		},
		{
			name:    "debug below threshold",
			level:   LevelDebug,
			message: "debug message",
			want:    false,
		},
		{
			name:    "error with err",
			level:   LevelError,
			message: "error occurred",
			err:     errors.New("test error"),
			want:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()

			logger.log(tt.level, tt.message, tt.fields, tt.err)

			logged := buf.Len() > 0
			if logged != tt.want {
				t.Errorf("log() logged = %v, want %v", logged, tt.want)
			}
			if tt.want && !strings.Contains(buf.String(), tt.message) {
				t.Errorf("output %q does not contain message %q", buf.String(), tt.message)
			}
			if tt.err != nil && !strings.Contains(buf.String(), tt.err.Error()) {
				t.Errorf("output %q does not contain error", buf.String())
			}
		})
	}
}

func TestNewWithOptions_JSONInProduction(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithOptions(Options{Level: "debug", Environment: "production", Output: &buf})
	if err != nil {
		t.Fatalf("NewWithOptions() error = %v", err)
	}

	logger.Debug("shard fetched", Fields{"map": "暮土戰場"})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["msg"] != "shard fetched" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["map"] != "暮土戰場" {
		t.Errorf("map field = %v", entry["map"])
	}
	if entry["level"] != "debug" {
		t.Errorf("level = %v", entry["level"])
	}
}

func TestNewWithOptions_BadLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithOptions(Options{Level: "chatty", Output: &buf})
	if err == nil {
		t.Error("expected error for unknown level")
	}
	if logger == nil {
		t.Fatal("logger should still be returned")
	}
	if logger.Enabled(LevelDebug) {
		t.Error("fallback level should be info")
	}
	if !logger.Enabled(LevelInfo) {
		t.Error("info should be enabled")
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		minLevel  Level
		logLevel  Level
		shouldLog bool
	}{
		{"debug logs at debug", LevelDebug, LevelDebug, true},
		{"info logs at debug", LevelDebug, LevelInfo, true},
		{"debug doesn't log at info", LevelInfo, LevelDebug, false},
		{"warn doesn't log at error", LevelError, LevelWarn, false},
		{"error always logs", LevelDebug, LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := New(tt.minLevel, &buf)

			logger.log(tt.logLevel, "test", nil, nil)

			if logged := buf.Len() > 0; logged != tt.shouldLog {
				t.Errorf("logged = %v, want %v", logged, tt.shouldLog)
			}
		})
	}
}

func TestMetrics_Counter(t *testing.T) {
	m := NewMetrics()

	m.IncrCounter("test_counter")
	m.IncrCounter("test_counter")
	m.IncrCounter("test_counter")

	snapshot := m.GetSnapshot()
	counters := snapshot["counters"].(map[string]int64)

	if counters["test_counter"] != 3 {
		t.Errorf("Counter = %v, want 3", counters["test_counter"])
	}
}

func TestMetrics_Gauge(t *testing.T) {
	m := NewMetrics()

	m.SetGauge("quests", 2)
	m.SetGauge("quests", 4)

	gauges := m.GetSnapshot()["gauges"].(map[string]float64)
	if gauges["quests"] != 4 {
		t.Errorf("Gauge = %v, want 4", gauges["quests"])
	}
}

func TestMetrics_Timing(t *testing.T) {
	m := NewMetrics()

	m.RecordTiming("fetch", 100*time.Millisecond)
	m.RecordTiming("fetch", 200*time.Millisecond)
	m.RecordTiming("fetch", 150*time.Millisecond)

	timings := m.GetSnapshot()["timings"].(map[string]map[string]interface{})
	fetch := timings["fetch"]

	checks := map[string]interface{}{
		"count":   3,
		"min":     "100ms",
		"max":     "200ms",
		"average": "150ms",
		"last":    "150ms",
	}
	for key, want := range checks {
		if fetch[key] != want {
			t.Errorf("%s = %v, want %v", key, fetch[key], want)
		}
	}
}

func TestMetrics_LogSnapshot(t *testing.T) {
	var buf bytes.Buffer
	m := NewMetrics()
	m.IncrCounter("build.runs")

	m.LogSnapshot(New(LevelInfo, &buf), "metrics")

	if !strings.Contains(buf.String(), "build.runs") {
		t.Errorf("snapshot line %q does not mention the counter", buf.String())
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	var buf bytes.Buffer
	previous := Default()
	SetDefault(New(LevelDebug, &buf))
	defer SetDefault(previous)

	Debug("test debug", nil)
	Info("test info", Fields{"key": "value"})
	Warn("test warning", nil)
	Error("test error", Fields{"component": "test"}, errors.New("test"))

	if got := strings.Count(buf.String(), "\n"); got != 4 {
		t.Errorf("wrote %d lines, want 4", got)
	}

	IncrCounter("test")
	SetGauge("test", 42.0)
	RecordTiming("test", time.Second)

	if GetMetricsSnapshot() == nil || DefaultMetrics() == nil {
		t.Error("default metrics unavailable")
	}
}
