package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultraschall/enginehub/internal/driverconf"
	"github.com/ultraschall/enginehub/internal/envvar"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndValidate(t *testing.T) {
	path := writeSettings(t, `version: "1"
driver:
  config_path: /tmp/Info.yaml
  watch: true
  driver_name: LoopbackDriver
presets:
  dir: /tmp/presets
server:
  grpc_address: 127.0.0.1:6000
logging:
  level: debug
  to_file: true
  file: /tmp/enginehub.log
`)

	cfg, err := LoadAndValidate(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/Info.yaml", cfg.Driver.ConfigPath)
	assert.True(t, cfg.Driver.Watch)
	assert.Equal(t, "LoopbackDriver", cfg.Driver.DriverName)
	assert.Equal(t, driverconf.DefaultLayout().EnginesKey, cfg.Driver.EnginesKey)
	assert.Equal(t, "/tmp/presets", cfg.Presets.Dir)
	assert.Equal(t, "127.0.0.1:6000", cfg.Server.GRPCAddress)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.ToFile)
}

func TestLoadAndValidate_AppliesDefaults(t *testing.T) {
	cfg, err := LoadAndValidate(writeSettings(t, "version: \"1\"\ndriver: {}\n"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Driver, cfg.Driver)
	assert.Equal(t, DefaultGRPCAddress, cfg.Server.GRPCAddress)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadAndValidate_SchemaViolations(t *testing.T) {
	tests := map[string]string{
		"missing driver":  "version: \"1\"\n",
		"unknown version": "version: \"2\"\ndriver: {}\n",
		"unknown key":     "version: \"1\"\ndriver: {}\nextra: true\n",
		"bad level":       "version: \"1\"\ndriver: {}\nlogging: {level: loud}\n",
		"watch not bool":  "version: \"1\"\ndriver: {watch: sometimes}\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadAndValidate(writeSettings(t, content))
			assert.ErrorContains(t, err, "validation failed")
		})
	}
}

func TestLoadAndValidate_InvalidYAML(t *testing.T) {
	_, err := LoadAndValidate(writeSettings(t, "version: [\n"))
	assert.ErrorContains(t, err, "invalid YAML")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Server, cfg.Server)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv(envvar.EnginehubDriverConfig, "/override/Info.yaml")
	t.Setenv(envvar.EnginehubGRPCAddress, "127.0.0.1:7000")
	t.Setenv(envvar.EnginehubLogLevel, "warn")

	cfg, err := Load(writeSettings(t, "version: \"1\"\ndriver: {config_path: /tmp/Info.yaml}\n"))
	require.NoError(t, err)

	assert.Equal(t, "/override/Info.yaml", cfg.Driver.ConfigPath)
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.GRPCAddress)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_InvalidFileIsAnError(t *testing.T) {
	_, err := Load(writeSettings(t, "version: \"1\"\n"))
	assert.Error(t, err)
}
