package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	// RootEnv names the environment variable consulted when no root flag is given.
	RootEnv = "GRAPHQL_OPS_ROOT"
	// NoFormatEnv, when true, skips the afterOneFileWrite formatter unless the
	// --no-format flag is given explicitly.
	NoFormatEnv = "GRAPHQL_OPS_NO_FORMAT"
)

// LoadEnv loads environment variables from .env files in dir, if present.
func LoadEnv(dir string, logger *logrus.Logger) {
	files := []string{".env", ".env.local"}
	loaded := make([]string, 0, len(files))
	for _, name := range files {
		file := name
		if dir != "" {
			file = dir + string(os.PathSeparator) + name
		}
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			if logger != nil {
				logger.WithError(err).Warnf("Failed to load %s", file)
			}
			continue
		}
		loaded = append(loaded, file)
	}
	if logger != nil && len(loaded) > 0 {
		logger.Debugf("Loaded env files: %s", strings.Join(loaded, ", "))
	}
}

// GetEnv gets an environment variable with a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvBool gets a boolean environment variable with a default value
func GetEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
