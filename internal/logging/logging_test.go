package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelParsing(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Info().Msg("dropped")
	log.Warn().Msg("kept")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, "kept")
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "extremely-verbose")
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestDisabled_ProducesNoOutput(t *testing.T) {
	log := Disabled()
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}

func TestRunLogPath(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	p := RunLogPath("logs", "run-42", start)
	assert.True(t, strings.HasSuffix(p, "crashsim.run-42.20260314_092653.log"), p)
	assert.True(t, strings.HasPrefix(p, "logs"), p)
}

func TestNewRunFile_CreatesDirAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "crashlogs")
	start := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	f, err := NewRunFile(dir, "run-42", start)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	assert.Equal(t, RunLogPath(dir, "run-42", start), f.Name())

	log := New(f, "info")
	log.Info().Msg("run started")

	data, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Contains(t, string(data), "run started")
}
