// Package preset encodes a full engine registry snapshot as an opaque,
// self-describing protobuf object graph.
package preset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ultraschall/enginehub/internal/engine"
	"github.com/ultraschall/enginehub/internal/xfs"
)

const (
	// Format identifies preset files.
	Format = "enginehub.preset"

	// Version is the current preset layout version.
	Version = 2
)

// Error definitions for the preset package.
var (
	ErrFormat = errors.New("not an engine preset")
	ErrEntry  = errors.New("malformed preset entry")
	ErrName   = errors.New("invalid preset name")
)

// Resolve returns the path of the preset called name inside dir. The name
// must be relative and must not leave dir.
func Resolve(dir, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("%w: no preset directory configured", ErrName)
	}
	if !filepath.IsLocal(name) || filepath.Clean(name) == "." {
		return "", fmt.Errorf("%w: %q", ErrName, name)
	}

	return filepath.Join(dir, name), nil
}

// Encode serializes the identifier -> engine mapping.
func Encode(engines map[string]engine.Engine) ([]byte, error) {
	entries := make(map[string]*structpb.Value, len(engines))
	for id, e := range engines {
		entries[id] = structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				"description": structpb.NewStringValue(e.Description),
				"channels":    structpb.NewStringValue(strconv.Itoa(e.Channels)),
			},
		})
	}

	root := &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"format":  structpb.NewStringValue(Format),
			"version": structpb.NewNumberValue(Version),
			"engines": structpb.NewStructValue(&structpb.Struct{Fields: entries}),
		},
	}

	data, err := proto.MarshalOptions{Deterministic: true}.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("preset: failed to encode: %w", err)
	}

	return data, nil
}

// Decode restores a mapping produced by Encode. Any structural mismatch is an
// error; a partial mapping is never returned.
func Decode(data []byte) (map[string]engine.Engine, error) {
	var root structpb.Struct
	if err := proto.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	fields := root.GetFields()
	if fields["format"].GetStringValue() != Format {
		return nil, ErrFormat
	}
	if v, ok := fields["version"].GetKind().(*structpb.Value_NumberValue); !ok || v.NumberValue != Version {
		return nil, fmt.Errorf("%w: unsupported version", ErrFormat)
	}

	list, ok := fields["engines"].GetKind().(*structpb.Value_StructValue)
	if !ok {
		return nil, fmt.Errorf("%w: missing engines", ErrFormat)
	}

	engines := make(map[string]engine.Engine, len(list.StructValue.GetFields()))
	for id, value := range list.StructValue.GetFields() {
		e, err := decodeEntry(id, value)
		if err != nil {
			return nil, err
		}
		engines[id] = e
	}

	return engines, nil
}

// Save writes the mapping to path atomically.
func Save(path string, engines map[string]engine.Engine) error {
	data, err := Encode(engines)
	if err != nil {
		return err
	}

	return xfs.WriteFileAtomic(path, data, 0o644)
}

// Load reads a mapping from path.
func Load(path string) (map[string]engine.Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("preset: failed to read %s: %w", path, err)
	}

	return Decode(data)
}

func decodeEntry(id string, value *structpb.Value) (engine.Engine, error) {
	if id == "" {
		return engine.Engine{}, fmt.Errorf("%w: empty identifier", ErrEntry)
	}

	entry, ok := value.GetKind().(*structpb.Value_StructValue)
	if !ok {
		return engine.Engine{}, fmt.Errorf("%w: %s is not a record", ErrEntry, id)
	}
	fields := entry.StructValue.GetFields()

	description, ok := fields["description"].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return engine.Engine{}, fmt.Errorf("%w: %s has no description", ErrEntry, id)
	}

	// Channels are stored as decimal text; a protobuf number is a float64
	// and cannot hold every int.
	raw, ok := fields["channels"].GetKind().(*structpb.Value_StringValue)
	if !ok {
		return engine.Engine{}, fmt.Errorf("%w: %s has invalid channels", ErrEntry, id)
	}
	channels, err := strconv.Atoi(raw.StringValue)
	if err != nil {
		return engine.Engine{}, fmt.Errorf("%w: %s has invalid channels: %w", ErrEntry, id, err)
	}

	return engine.Restore(id, description.StringValue, channels), nil
}
