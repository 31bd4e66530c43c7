package config

import (
	"os"
)

// GetEnv retrieves an environment variable with a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsEnvSet checks if an environment variable is set
func IsEnvSet(key string) bool {
	return os.Getenv(key) != ""
}
