package env

import (
	"os"
	"strings"

	"github.com/ultraschall/enginehub/internal/envvar"
)

// Environment is the runtime environment the process runs in.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// FromEnv reads the environment from ENGINEHUB_ENV. Unknown or empty values
// mean development.
func FromEnv() Environment {
	return Parse(os.Getenv(envvar.EnginehubEnv))
}

// Parse converts a string to an Environment.
func Parse(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prod", "production":
		return Production
	default:
		return Development
	}
}

// IsProduction reports whether e is the production environment.
func (e Environment) IsProduction() bool {
	return e == Production
}
