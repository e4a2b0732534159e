package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.yaml.in/yaml/v3"

	"github.com/ultraschall/enginehub/internal/envvar"
	"github.com/ultraschall/enginehub/internal/xfs"
)

const schemaURL = "settings.v1.schema.json"

//go:embed schema/settings.v1.schema.json
var schemaJSON []byte

// Load loads the settings file at path. A missing file yields Default().
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg, err := LoadAndValidate(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadAndValidate loads and validates the configuration.
func LoadAndValidate(path string) (*Config, error) {
	data, err := os.ReadFile(xfs.ExpandTilde(path))
	if err != nil {
		return nil, fmt.Errorf("config: failed to read config: %w", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: invalid YAML: %w", err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal into Config struct: %w", err)
	}
	config.applyDefaults()

	return &config, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("config: failed to add schema: %w", err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("config: failed to compile schema: %w", err)
	}

	return schema, nil
}

// applyEnv applies environment variable overrides.
// Precedence: environment variable, then settings file, then defaults.
func (c *Config) applyEnv() {
	if p := os.Getenv(envvar.EnginehubDriverConfig); p != "" {
		c.Driver.ConfigPath = p
	}
	if addr := os.Getenv(envvar.EnginehubGRPCAddress); addr != "" {
		c.Server.GRPCAddress = addr
	}
	if level := os.Getenv(envvar.EnginehubLogLevel); level != "" {
		c.Logging.Level = level
	}

	c.Driver.ConfigPath = xfs.ExpandTilde(c.Driver.ConfigPath)
	c.Presets.Dir = xfs.ExpandTilde(c.Presets.Dir)
}
