// Package logger provides structured logging and in-process metrics for skydaily.
//
// Log lines go through logrus: JSON in production and staging, human-readable
// text everywhere else. Callers attach structured fields instead of formatting
// values into the message.
//
// Example usage:
//
//	logger.Info("shard fetched", logger.Fields{
//	    "date": "2026-01-05",
//	    "map":  "暮土戰場",
//	})
//
//	logger.Error("dashboard publish failed", logger.Fields{
//	    "artifact": "index.html",
//	}, err)
//
//	logger.IncrCounter("build.runs")
//	logger.RecordTiming("fetch.shard", duration)
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Fields represents structured log fields
type Fields map[string]interface{}

// Options configures a logger built by NewWithOptions.
type Options struct {
	Level       string // any level logrus.ParseLevel accepts
	Environment string // "production" and "staging" switch to JSON output
	Output      io.Writer
}

// Logger provides structured logging
type Logger struct {
	base *logrus.Logger
}

var defaultLogger *Logger

func init() {
	defaultLogger = New(LevelInfo, os.Stderr)
}

// New creates a text logger with the given minimum level.
func New(level Level, output io.Writer) *Logger {
	l := logrus.New()
	l.SetOutput(output)
	l.SetLevel(toLogrus(level))
	l.SetFormatter(textFormatter())
	return &Logger{base: l}
}

// NewWithOptions builds a logger from configuration values. An unparseable
// level falls back to info and is reported through the returned error so the
// caller can log it once the logger is in place.
func NewWithOptions(opts Options) (*Logger, error) {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	l := logrus.New()
	l.SetOutput(output)

	level, err := logrus.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	switch strings.ToLower(opts.Environment) {
	case "production", "staging":
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	default:
		l.SetFormatter(textFormatter())
	}

	return &Logger{base: l}, err
}

func textFormatter() logrus.Formatter {
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
}

func toLogrus(level Level) logrus.Level {
	switch level {
	case LevelDebug:
		return logrus.DebugLevel
	case LevelWarn:
		return logrus.WarnLevel
	case LevelError:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// SetDefault sets the default package-level logger used by the convenience functions
// (Debug, Info, Warn, Error).
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Default returns the package-level logger.
func Default() *Logger {
	return defaultLogger
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return l.base.IsLevelEnabled(toLogrus(level))
}

func (l *Logger) log(level Level, message string, fields Fields, err error) {
	lv := toLogrus(level)
	if !l.base.IsLevelEnabled(lv) {
		return
	}

	entry := l.base.WithFields(logrus.Fields(fields))
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Log(lv, message)
}

// Debug logs a debug message with optional structured fields.
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs an informational message with optional structured fields.
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a warning message with optional structured fields.
func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

// Error logs an error message with optional structured fields and an error object.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Package-level convenience functions using default logger

// Debug logs a debug message with the default logger
func Debug(message string, fields Fields) {
	defaultLogger.Debug(message, fields)
}

// Info logs an info message with the default logger
func Info(message string, fields Fields) {
	defaultLogger.Info(message, fields)
}

// Warn logs a warning message with the default logger
func Warn(message string, fields Fields) {
	defaultLogger.Warn(message, fields)
}

// Error logs an error message with the default logger
func Error(message string, fields Fields, err error) {
	defaultLogger.Error(message, fields, err)
}
