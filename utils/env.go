package utils

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadEnv loads a .env file from the working directory if one exists.
// Variables already present in the environment win.
func LoadEnv(files ...string) error {
	return godotenv.Load(files...)
}

func GetEnv(key, defaultValue string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultValue
}

func GetEnvInt(key string, defaultValue int) int {
	val, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return val
}

// GetEnvDuration accepts Go duration strings ("10m", "720h").
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	val, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return val
}

// GetEnvList splits a comma separated variable, dropping empty entries.
func GetEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
