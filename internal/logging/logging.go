// Package logging owns the process-wide structured logger. Records go to a
// rotating file under the configured directory, and also to stderr when
// debug output is enabled.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the global logger. It stays nil until Init is called, and the
// package-level helpers are no-ops until then.
var Logger *log.Logger

// Config controls where and how verbosely the logger writes.
type Config struct {
	Debug   bool
	Verbose bool
	LogDir  string
}

// DebugEnabled returns true if debug mode is enabled via CLOCKEDIN_DEBUG
func DebugEnabled() bool {
	return os.Getenv("CLOCKEDIN_DEBUG") != ""
}

// Init builds the global logger from cfg.
func Init(cfg Config) error {
	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "clockedin.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	debug := cfg.Debug || DebugEnabled()
	level := log.WarnLevel
	switch {
	case debug:
		level = log.DebugLevel
	case cfg.Verbose:
		level = log.InfoLevel
	}

	var writer io.Writer = fileWriter
	if debug {
		writer = io.MultiWriter(os.Stderr, fileWriter)
	}

	Logger = New(writer, level)
	Logger.SetReportCaller(debug)
	return nil
}

// New returns a logger with the application prefix writing to w.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          "clockedin",
	})
}

// Debug logs a debug message
func Debug(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

// Info logs an info message
func Info(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

// Warn logs a warning message
func Warn(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

// Error logs an error message
func Error(msg string, keyvals ...interface{}) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
