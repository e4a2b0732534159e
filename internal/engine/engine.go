// Package engine defines a single virtual audio-engine definition and its
// structured-record projection used by the driver configuration document.
package engine

import (
	"github.com/google/uuid"

	"github.com/ultraschall/enginehub/internal/mapsafe"
)

// Structured record keys in the driver configuration document.
const (
	KeyIdentifier  = "EngineIdentifier"
	KeyDescription = "EngineDescription"
	KeyChannels    = "NumChannels"
)

// Engine is a virtual audio-engine definition. The identifier is assigned once
// and cannot be changed; Description and Channels are freely mutable.
type Engine struct {
	id          string
	Description string
	Channels    int
}

// New creates an engine with a freshly generated identifier.
// The channel count is stored as given.
func New(description string, channels int) Engine {
	return Engine{
		id:          uuid.NewString(),
		Description: description,
		Channels:    channels,
	}
}

// Restore rebuilds an engine with a known identifier.
func Restore(id, description string, channels int) Engine {
	return Engine{
		id:          id,
		Description: description,
		Channels:    channels,
	}
}

// ID returns the engine identifier.
func (e Engine) ID() string {
	return e.id
}

// FromRecord parses a structured record. It reports false when a required
// field is absent or mistyped.
func FromRecord(record map[string]any) (Engine, bool) {
	id, ok := mapsafe.Lookup[string](record, KeyIdentifier)
	if !ok || id == "" {
		return Engine{}, false
	}

	description, ok := mapsafe.Lookup[string](record, KeyDescription)
	if !ok {
		return Engine{}, false
	}

	channels, ok := mapsafe.Lookup[int](record, KeyChannels)
	if !ok {
		return Engine{}, false
	}

	return Restore(id, description, channels), true
}

// Record returns the structured-record projection of the engine.
// It reports false for an engine without an identifier.
func (e Engine) Record() (map[string]any, bool) {
	if e.id == "" {
		return nil, false
	}

	return map[string]any{
		KeyIdentifier:  e.id,
		KeyDescription: e.Description,
		KeyChannels:    e.Channels,
	}, true
}
