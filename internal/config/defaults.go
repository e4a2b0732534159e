package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultGRPCAddress is the default listen address of the gRPC server.
const DefaultGRPCAddress = "127.0.0.1:50061"

// DefaultConfigPath returns the default path for the enginehub config directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "enginehub", "config")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "enginehub")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "enginehub")
	default: // Linux, BSD, etc.
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "enginehub")
		}
		return filepath.Join(home, ".config", "enginehub")
	}
}

// DefaultPresetsPath returns the default directory for preset files.
func DefaultPresetsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "enginehub", "presets")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Local", "enginehub", "presets")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "enginehub", "presets")
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "enginehub", "presets")
		}
		return filepath.Join(home, ".local", "share", "enginehub", "presets")
	}
}

// DefaultDriverConfigPath returns the well-known location of the driver's
// configuration document.
func DefaultDriverConfigPath() string {
	switch runtime.GOOS {
	case "darwin":
		return "/Library/Extensions/UltraschallHub.kext/Contents/Info.yaml"
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "UltraschallHub", "Info.yaml")
	default:
		return "/etc/ultraschallhub/Info.yaml"
	}
}
