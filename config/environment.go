package config

import (
	"os"
	"strings"
)

const (
	appEnvVar              = "APP_ENV"
	environmentDevelopment = "development"
	environmentProduction  = "production"
)

const (
	// EnvironmentDevelopment exposes the canonical development environment
	// identifier for callers outside the config package.
	EnvironmentDevelopment = environmentDevelopment
	// EnvironmentProduction exposes the canonical production environment
	// identifier.
	EnvironmentProduction = environmentProduction
)

var environmentAliases = map[string]string{
	"dev":  environmentDevelopment,
	"prod": environmentProduction,
}

// defaultPath is the configuration file used when no flag is given, with
// per-environment overrides picked up when present.
const defaultPath = "config/config.yml"

var envPaths = map[string]string{
	environmentDevelopment: "config/config.dev.yml",
	environmentProduction:  "config/config.prod.yml",
}

// AppEnvironment reads the application environment from APP_ENV and
// defaults to development when no value is provided.
func AppEnvironment() string {
	env := strings.ToLower(strings.TrimSpace(os.Getenv(appEnvVar)))
	if env == "" {
		return environmentDevelopment
	}
	if canonical, ok := environmentAliases[env]; ok {
		return canonical
	}
	return env
}

// ResolvePath selects the configuration file to load. An explicit path wins;
// otherwise an environment specific file is used when it exists on disk,
// falling back to the default path.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if envPath, ok := envPaths[AppEnvironment()]; ok {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	return defaultPath
}
