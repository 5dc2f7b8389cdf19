// Package config reads runtime configuration from the environment. A .env
// file in the working directory is honored when present (loaded by the CLI
// before commands run).
package config

import (
	"os"
	"strconv"
)

type Config struct {
	Embedding EmbeddingConfig
	Workers   int // fingerprinting workers, 0 means number of CPUs
}

type EmbeddingConfig struct {
	URL string // face embedding service, defaults to http://localhost:8000
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			URL: os.Getenv("FACESORT_EMBED_URL"),
		},
		Workers: envInt("FACESORT_WORKERS", 0),
	}
}
