package config

import (
	"github.com/ultraschall/enginehub/internal/driverconf"
)

// Config holds the main configuration for the application.
type Config struct {
	Version string        `json:"version"           yaml:"version"`
	Driver  DriverConfig  `json:"driver"            yaml:"driver"`
	Presets PresetsConfig `json:"presets,omitempty" yaml:"presets,omitempty"`
	Server  ServerConfig  `json:"server,omitempty"  yaml:"server,omitempty"`
	Logging LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// DriverConfig locates the driver configuration document and its engine list.
type DriverConfig struct {
	ConfigPath string `json:"config_path" yaml:"config_path"`
	// Watch reloads the registry when the driver document changes on disk.
	Watch bool `json:"watch,omitempty" yaml:"watch,omitempty"`

	driverconf.Layout `yaml:",inline"`
}

// PresetsConfig holds preset storage settings.
type PresetsConfig struct {
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// ServerConfig holds the gRPC server settings.
type ServerConfig struct {
	GRPCAddress string `json:"grpc_address,omitempty" yaml:"grpc_address,omitempty"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `json:"level,omitempty"   yaml:"level,omitempty"`
	ToFile bool   `json:"to_file,omitempty" yaml:"to_file,omitempty"`
	File   string `json:"file,omitempty"    yaml:"file,omitempty"`
}

// Default returns the configuration used when no settings file exists.
func Default() *Config {
	return &Config{
		Version: "1",
		Driver: DriverConfig{
			ConfigPath: DefaultDriverConfigPath(),
			Layout:     driverconf.DefaultLayout(),
		},
		Presets: PresetsConfig{Dir: DefaultPresetsPath()},
		Server:  ServerConfig{GRPCAddress: DefaultGRPCAddress},
		Logging: LoggingConfig{Level: "info"},
	}
}

// applyDefaults fills fields left empty by a settings file.
func (c *Config) applyDefaults() {
	def := Default()

	if c.Driver.ConfigPath == "" {
		c.Driver.ConfigPath = def.Driver.ConfigPath
	}
	if c.Driver.PersonalitiesKey == "" {
		c.Driver.PersonalitiesKey = def.Driver.PersonalitiesKey
	}
	if c.Driver.DriverName == "" {
		c.Driver.DriverName = def.Driver.DriverName
	}
	if c.Driver.EnginesKey == "" {
		c.Driver.EnginesKey = def.Driver.EnginesKey
	}
	if c.Presets.Dir == "" {
		c.Presets.Dir = def.Presets.Dir
	}
	if c.Server.GRPCAddress == "" {
		c.Server.GRPCAddress = def.Server.GRPCAddress
	}
	if c.Logging.Level == "" {
		c.Logging.Level = def.Logging.Level
	}
}
