// Package output provides terminal output utilities: the process logger,
// styles, tables, spinners and machine-readable encoders.
package output

import (
	"os"

	"github.com/charmbracelet/log"
)

// logger is the process-wide logger. Replaced by SetupLogging.
var logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

// LogConfig configures the logger.
type LogConfig struct {
	// Verbose enables debug output, caller reporting and timestamps.
	Verbose bool
	// Timestamps toggles timestamps when not verbose. Nil means on.
	Timestamps *bool
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }

// SetupLogging configures the logger from cfg.
func SetupLogging(cfg LogConfig) {
	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	timestamps := true
	if !cfg.Verbose && cfg.Timestamps != nil {
		timestamps = *cfg.Timestamps
	}

	logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: timestamps,
		ReportCaller:    cfg.Verbose,
		TimeFormat:      "15:04:05",
	})
}

// Logger returns the process-wide logger.
func Logger() *log.Logger { return logger }

// FileLogger returns a logger that prefixes every line with path.
func FileLogger(path string) *log.Logger {
	return logger.WithPrefix(StyleNoun.Render(path))
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...any) {
	logger.Debug(msg, keyvals...)
}

// Info logs an info message.
func Info(msg string, keyvals ...any) {
	logger.Info(msg, keyvals...)
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...any) {
	logger.Warn(msg, keyvals...)
}

// Error logs an error message.
func Error(msg string, keyvals ...any) {
	logger.Error(msg, keyvals...)
}

// Println prints a line to stdout.
func Println(msg string) {
	os.Stdout.WriteString(msg + "\n")
}

// Details writes multi-line detail text to stderr without log decoration.
func Details(msg string) {
	os.Stderr.WriteString(msg + "\n")
}
