package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultraschall/enginehub/internal/env"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestNew_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(env.Production, WithConsole(&buf))

	log.Debug("hidden")
	log.Info("Engine added", "engine_id", "a1")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Engine added", entry["msg"])
	assert.Equal(t, "a1", entry["engine_id"])
	assert.Equal(t, "enginehub", entry["service"])
}

func TestNew_DevelopmentIsText(t *testing.T) {
	var buf bytes.Buffer
	log := New(env.Development, WithConsole(&buf), WithLevel("warn"))

	log.Info("hidden")
	log.Warn("Engine operation failed", "op", "RemoveEngine")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "Engine operation failed")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestNew_LogToFile(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "enginehub.log")

	log := New(env.Production, WithConsole(&buf), WithLogToFile(true), WithLogFile(path))
	log.With("component", "test").Info("Preset saved", "path", "/tmp/p.bin")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Preset saved")
	assert.Contains(t, string(data), `"component":"test"`)
	assert.Contains(t, buf.String(), "Preset saved")
}
