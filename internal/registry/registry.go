// Package registry owns the in-memory collection of audio engines and its
// persistence to the driver configuration document and to preset files.
package registry

import (
	"cmp"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/ultraschall/enginehub/internal/driverconf"
	"github.com/ultraschall/enginehub/internal/engine"
	"github.com/ultraschall/enginehub/internal/preset"
	"github.com/ultraschall/enginehub/internal/xfs"
)

// Options configures a Registry.
type Options struct {
	// DriverConfigPath is the canonical driver configuration document.
	DriverConfigPath string

	// Layout locates the engine list inside the driver document.
	Layout driverconf.Layout

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Registry stores engines keyed by identifier.
// A single lock guards the map; persistence and mutation never interleave.
type Registry struct {
	engines    map[string]engine.Engine
	driverPath string
	layout     driverconf.Layout
	logger     *slog.Logger
	mu         sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	layout := opts.Layout
	if layout == (driverconf.Layout{}) {
		layout = driverconf.DefaultLayout()
	}

	return &Registry{
		engines:    make(map[string]engine.Engine),
		driverPath: opts.DriverConfigPath,
		layout:     layout,
		logger:     logger.With("component", "registry"),
	}
}

// DriverConfigPath returns the canonical driver configuration path.
func (r *Registry) DriverConfigPath() string {
	return r.driverPath
}

// Len returns the number of engines.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.engines)
}

// Get returns the engine with the given identifier.
func (r *Registry) Get(id string) (engine.Engine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.engines[id]
	return e, ok
}

// List returns all engines in presentation order: description,
// case-insensitive ascending, ties broken by identifier.
func (r *Registry) List() []engine.Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted()
}

// At returns the engine at index in presentation order.
func (r *Registry) At(index int) (engine.Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= len(r.engines) {
		return engine.Engine{}, fmt.Errorf("%w: %d of %d", ErrOutOfRange, index, len(r.engines))
	}

	return r.sorted()[index], nil
}

// Snapshot returns a copy of the identifier -> engine mapping.
func (r *Registry) Snapshot() map[string]engine.Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return maps.Clone(r.engines)
}

// Add creates an engine from its fields and stores it.
func (r *Registry) Add(description string, channels int) engine.Engine {
	e := engine.New(description, channels)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.engines[e.ID()] = e
	r.logger.Debug("Engine added", "engine_id", e.ID(), "description", description, "channels", channels)
	return e
}

// Insert stores e unless its identifier is already present.
func (r *Registry) Insert(e engine.Engine) error {
	if e.ID() == "" {
		return ErrNoIdentifier
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.engines[e.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, e.ID())
	}

	r.engines[e.ID()] = e
	r.logger.Debug("Engine inserted", "engine_id", e.ID())
	return nil
}

// Update overwrites description and channels of the engine with id.
func (r *Registry) Update(id, description string, channels int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.engines[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	e.Description = description
	e.Channels = channels
	r.engines[id] = e

	r.logger.Debug("Engine updated", "engine_id", id, "description", description, "channels", channels)
	return nil
}

// UpdateEngine overwrites the stored engine's fields with those of e.
func (r *Registry) UpdateEngine(e engine.Engine) error {
	return r.Update(e.ID(), e.Description, e.Channels)
}

// Remove deletes the engine with id.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.engines[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	delete(r.engines, id)
	r.logger.Debug("Engine removed", "engine_id", id)
	return nil
}

// RemoveEngine deletes the engine with e's identifier.
func (r *Registry) RemoveEngine(e engine.Engine) error {
	return r.Remove(e.ID())
}

// Clear removes every engine.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.engines)
}

// LoadConfiguration replaces the registry with the engines listed in the
// driver document at path. The registry is cleared before the read is
// attempted, so a failed load leaves it empty. Entries that cannot be parsed
// are skipped.
func (r *Registry) LoadConfiguration(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clear(r.engines)

	doc, err := driverconf.Open(path, r.layout)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedSource, err)
	}

	records, skipped := doc.Records()
	for _, record := range records {
		e, ok := engine.FromRecord(record)
		if !ok {
			skipped++
			continue
		}
		r.engines[e.ID()] = e
	}

	if skipped > 0 {
		r.logger.Debug("Skipped unparseable engine records", "path", path, "skipped", skipped)
	}
	r.logger.Info("Driver configuration loaded", "path", path, "engines", len(r.engines))
	return nil
}

// LoadDriverConfiguration loads the canonical driver document.
func (r *Registry) LoadDriverConfiguration() error {
	return r.LoadConfiguration(r.driverPath)
}

// SaveConfiguration rewrites the canonical driver document with the current
// engines and writes the result to path. Nothing is written if the canonical
// document cannot be read or lacks the engine list.
func (r *Registry) SaveConfiguration(path string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, err := driverconf.Open(r.driverPath, r.layout)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedSource, err)
	}

	engines := r.sorted()
	records := make([]map[string]any, 0, len(engines))
	for _, e := range engines {
		if record, ok := e.Record(); ok {
			records = append(records, record)
		}
	}

	if err := doc.ReplaceRecords(records); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	if err := doc.WriteFile(path); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}

	r.logger.Info("Driver configuration saved", "path", path, "engines", len(records))
	return nil
}

// SaveDriverConfiguration saves to a fresh temporary path and returns it.
func (r *Registry) SaveDriverConfiguration() (string, error) {
	path := xfs.TempPath(".yaml")
	if err := r.SaveConfiguration(path); err != nil {
		return "", err
	}

	return path, nil
}

// NewPreset empties the registry.
func (r *Registry) NewPreset() {
	r.Clear()
	r.logger.Info("New preset started")
}

// SavePreset writes the whole identifier -> engine mapping to path.
func (r *Registry) SavePreset(path string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := preset.Save(path, r.engines); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}

	r.logger.Info("Preset saved", "path", path, "engines", len(r.engines))
	return nil
}

// LoadPreset replaces the registry with the mapping stored at path.
// On failure the registry is left untouched.
func (r *Registry) LoadPreset(path string) error {
	engines, err := preset.Load(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedSource, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.engines = engines
	r.logger.Info("Preset loaded", "path", path, "engines", len(engines))
	return nil
}

// sorted must be called with r.mu held.
func (r *Registry) sorted() []engine.Engine {
	engines := slices.Collect(maps.Values(r.engines))
	slices.SortFunc(engines, func(a, b engine.Engine) int {
		return cmp.Or(
			strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description)),
			strings.Compare(a.ID(), b.ID()),
		)
	})

	return engines
}
