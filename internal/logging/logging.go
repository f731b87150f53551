// Package logging configures the zerolog loggers handed to the engine and
// the sweep runner.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// New builds a logger writing to w at the given level. Unknown level strings
// fall back to info.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// NewConsole builds a human-readable logger for interactive runs.
func NewConsole(level string) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}, level)
}

// Disabled is the default logger for library use: no output at all.
func Disabled() zerolog.Logger {
	return zerolog.Nop()
}

// RunLogPath builds a per-run log file path under logsDir.
func RunLogPath(logsDir, runID string, start time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("crashsim.%s.%s.log", runID, start.Format("20060102_150405")),
	)
}

// NewRunFile creates the per-run log file under logsDir, creating the
// directory if needed. The caller owns the file.
func NewRunFile(logsDir, runID string, start time.Time) (*os.File, error) {
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return nil, err
	}
	return os.Create(RunLogPath(logsDir, runID, start))
}
