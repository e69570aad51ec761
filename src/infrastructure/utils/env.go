package utils

import "os"

// GetEnv returns the value of an environment variable or a default
func GetEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
