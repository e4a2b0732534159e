// Package driverconf reads and rewrites the driver's system-level
// configuration document. The document is kept as a YAML node tree so that
// everything outside the engine list survives a rewrite untouched.
package driverconf

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/ultraschall/enginehub/internal/xfs"
)

// Layout describes where the engine list lives inside the document:
// PersonalitiesKey -> DriverName -> EnginesKey.
type Layout struct {
	PersonalitiesKey string `json:"personalities_key" yaml:"personalities_key"`
	DriverName       string `json:"driver_name"       yaml:"driver_name"`
	EnginesKey       string `json:"engines_key"       yaml:"engines_key"`
}

// DefaultLayout returns the layout used by the phantom audio driver.
func DefaultLayout() Layout {
	return Layout{
		PersonalitiesKey: "IOKitPersonalities",
		DriverName:       "PhantomAudioDriver",
		EnginesKey:       "AudioEngines",
	}
}

// Document is a parsed driver configuration document.
type Document struct {
	root    yaml.Node
	engines *yaml.Node
}

// Open reads and parses the document at path and locates its engine list.
// It returns ErrLayout if the nested engine list is absent.
func Open(path string, layout Layout) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("driverconf: failed to read %s: %w", path, err)
	}

	return Parse(data, layout)
}

// Parse parses a document from raw bytes.
func Parse(data []byte, layout Layout) (*Document, error) {
	doc := &Document{}
	if err := yaml.Unmarshal(data, &doc.root); err != nil {
		return nil, fmt.Errorf("driverconf: invalid document: %w", err)
	}

	node := &doc.root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, ErrLayout
		}
		node = node.Content[0]
	}

	for _, key := range []string{layout.PersonalitiesKey, layout.DriverName, layout.EnginesKey} {
		node = child(node, key)
		if node == nil {
			return nil, fmt.Errorf("%w: missing %q", ErrLayout, key)
		}
	}

	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: %q is not a list", ErrLayout, layout.EnginesKey)
	}
	doc.engines = node

	return doc, nil
}

// Records decodes every entry of the engine list. Entries that are not
// key-value records are skipped and counted.
func (d *Document) Records() (records []map[string]any, skipped int) {
	records = make([]map[string]any, 0, len(d.engines.Content))
	for _, item := range d.engines.Content {
		var record map[string]any
		if item.Kind != yaml.MappingNode || item.Decode(&record) != nil {
			skipped++
			continue
		}
		records = append(records, record)
	}

	return records, skipped
}

// ReplaceRecords clears the engine list and fills it with records, in order.
func (d *Document) ReplaceRecords(records []map[string]any) error {
	var list yaml.Node
	if err := list.Encode(records); err != nil {
		return fmt.Errorf("driverconf: failed to encode engine list: %w", err)
	}

	d.engines.Content = list.Content
	d.engines.Style = 0
	if len(records) == 0 {
		d.engines.Style = yaml.FlowStyle
	}

	return nil
}

// Bytes renders the whole document.
func (d *Document) Bytes() ([]byte, error) {
	data, err := yaml.Marshal(&d.root)
	if err != nil {
		return nil, fmt.Errorf("driverconf: failed to encode document: %w", err)
	}

	return data, nil
}

// WriteFile renders the document and atomically replaces path with it.
func (d *Document) WriteFile(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return err
	}

	return xfs.WriteFileAtomic(path, data, 0o644)
}

// child returns the value node stored under key in a mapping node.
func child(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}

	return nil
}
