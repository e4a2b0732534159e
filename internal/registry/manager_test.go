package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultraschall/enginehub/internal/engine"
)

func newTestManager(t *testing.T, driverPath string) *Manager {
	t.Helper()

	return NewManager(Options{DriverConfigPath: driverPath, Logger: quietLogger()})
}

func TestNewManager_LoadsDriverConfiguration(t *testing.T) {
	m := newTestManager(t, writeDriverConfig(t, driverDocument))
	assert.Equal(t, 2, m.Count())
}

func TestNewManager_MissingDriverConfigurationIsEmpty(t *testing.T) {
	m := newTestManager(t, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Zero(t, m.Count())

	m = newTestManager(t, writeDriverConfig(t, "{not: [valid"))
	assert.Zero(t, m.Count())
}

func TestManager_AddReportsSuccess(t *testing.T) {
	m := newTestManager(t, "")

	assert.True(t, m.AddEngine("Stereo", 2))
	assert.Equal(t, 1, m.Count())
}

func TestManager_BooleanProjection(t *testing.T) {
	m := newTestManager(t, "")

	e := engine.Restore("a1", "Stereo", 2)
	assert.True(t, m.InsertEngine(e))
	assert.False(t, m.InsertEngine(e))

	assert.True(t, m.UpdateEngine("Quad", 4, "a1"))
	assert.False(t, m.UpdateEngine("Quad", 4, "missing"))

	assert.True(t, m.UpdateEngineRecord(engine.Restore("a1", "Octo", 8)))
	assert.False(t, m.UpdateEngineRecord(engine.Restore("b2", "Octo", 8)))

	got, ok := m.EngineAt(0)
	require.True(t, ok)
	assert.Equal(t, "Octo", got.Description)

	_, ok = m.EngineAt(1)
	assert.False(t, ok)

	assert.True(t, m.RemoveEngineRecord(e))
	assert.False(t, m.RemoveEngine("a1"))
}

func TestManager_Presets(t *testing.T) {
	m := newTestManager(t, "")
	m.AddEngine("Stereo", 2)
	m.AddEngine("Surround", 6)
	want := m.Registry().Snapshot()

	path := filepath.Join(t.TempDir(), "preset.bin")
	require.True(t, m.SavePreset(path))

	m.NewPreset()
	assert.Zero(t, m.Count())

	require.True(t, m.LoadPreset(path))
	assert.Equal(t, want, m.Registry().Snapshot())

	assert.False(t, m.LoadPreset(filepath.Join(t.TempDir(), "missing.bin")))
	assert.Equal(t, want, m.Registry().Snapshot())
}

func TestManager_Configuration(t *testing.T) {
	canonical := writeDriverConfig(t, driverDocument)
	m := newTestManager(t, canonical)

	m.AddEngine("Aux", 4)
	target := filepath.Join(t.TempDir(), "out.yaml")
	require.True(t, m.SaveConfiguration(target))

	assert.True(t, m.LoadConfiguration(target))
	assert.Equal(t, 3, m.Count())

	path, ok := m.SaveDriverConfiguration()
	require.True(t, ok)
	t.Cleanup(func() { _ = os.Remove(path) })
	assert.FileExists(t, path)

	assert.False(t, m.LoadConfiguration(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Zero(t, m.Count())

	assert.True(t, m.LoadDriverConfiguration())
	assert.Equal(t, 2, m.Count())
}
