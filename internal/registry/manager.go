package registry

import (
	"log/slog"

	"github.com/ultraschall/enginehub/internal/engine"
)

// Manager is the caller surface used by presentation layers. Every operation
// reports a single success flag; the underlying error is logged.
type Manager struct {
	registry *Registry
	logger   *slog.Logger
}

// NewManager creates a Manager and loads the canonical driver configuration.
// A missing or malformed driver configuration leaves the registry empty.
func NewManager(opts Options) *Manager {
	registry := NewRegistry(opts)

	m := &Manager{
		registry: registry,
		logger:   registry.logger,
	}
	m.LoadDriverConfiguration()

	return m
}

// Registry returns the underlying registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Count returns the number of engines.
func (m *Manager) Count() int {
	return m.registry.Len()
}

// EngineAt returns the engine at index in presentation order.
func (m *Manager) EngineAt(index int) (engine.Engine, bool) {
	e, err := m.registry.At(index)
	return e, m.report(err, "EngineAt", "index", index)
}

// AddEngine creates and stores a new engine.
func (m *Manager) AddEngine(description string, channels int) bool {
	m.registry.Add(description, channels)
	return true
}

// InsertEngine stores e unless its identifier is taken.
func (m *Manager) InsertEngine(e engine.Engine) bool {
	return m.report(m.registry.Insert(e), "InsertEngine", "engine_id", e.ID())
}

// UpdateEngine overwrites the fields of the engine with id.
func (m *Manager) UpdateEngine(description string, channels int, id string) bool {
	return m.report(m.registry.Update(id, description, channels), "UpdateEngine", "engine_id", id)
}

// UpdateEngineRecord overwrites the stored engine's fields with those of e.
func (m *Manager) UpdateEngineRecord(e engine.Engine) bool {
	return m.report(m.registry.UpdateEngine(e), "UpdateEngine", "engine_id", e.ID())
}

// RemoveEngine deletes the engine with id.
func (m *Manager) RemoveEngine(id string) bool {
	return m.report(m.registry.Remove(id), "RemoveEngine", "engine_id", id)
}

// RemoveEngineRecord deletes the engine with e's identifier.
func (m *Manager) RemoveEngineRecord(e engine.Engine) bool {
	return m.report(m.registry.RemoveEngine(e), "RemoveEngine", "engine_id", e.ID())
}

// LoadDriverConfiguration loads the canonical driver document.
func (m *Manager) LoadDriverConfiguration() bool {
	return m.report(m.registry.LoadDriverConfiguration(), "LoadDriverConfiguration",
		"path", m.registry.DriverConfigPath())
}

// LoadConfiguration loads the driver document at path.
func (m *Manager) LoadConfiguration(path string) bool {
	return m.report(m.registry.LoadConfiguration(path), "LoadConfiguration", "path", path)
}

// SaveConfiguration writes the updated driver document to path.
func (m *Manager) SaveConfiguration(path string) bool {
	return m.report(m.registry.SaveConfiguration(path), "SaveConfiguration", "path", path)
}

// SaveDriverConfiguration writes the updated driver document to a fresh
// temporary path and returns it.
func (m *Manager) SaveDriverConfiguration() (string, bool) {
	path, err := m.registry.SaveDriverConfiguration()
	return path, m.report(err, "SaveDriverConfiguration")
}

// NewPreset empties the registry.
func (m *Manager) NewPreset() {
	m.registry.NewPreset()
}

// SavePreset writes the registry to a preset file.
func (m *Manager) SavePreset(path string) bool {
	return m.report(m.registry.SavePreset(path), "SavePreset", "path", path)
}

// LoadPreset replaces the registry with a preset file.
func (m *Manager) LoadPreset(path string) bool {
	return m.report(m.registry.LoadPreset(path), "LoadPreset", "path", path)
}

func (m *Manager) report(err error, op string, args ...any) bool {
	if err == nil {
		return true
	}

	m.logger.Warn("Engine operation failed", append([]any{"op", op, "error", err}, args...)...)
	return false
}
