package config

import (
	"path/filepath"
	"time"

	"github.com/yndnr/unionhub-go/internal/storage"
)

// Default configuration values.
const (
	DefaultBaseURL   = "http://localhost:7860/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10.0
	DefaultBurst     = 5

	DefaultStorageBackend = storage.BackendFile

	DefaultOutput = "table"

	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// DefaultConfigPath returns ~/.unionhub/cli.yaml.
func DefaultConfigPath() string {
	return filepath.Join(storage.DefaultDir(), "cli.yaml")
}

// DefaultHistoryPath returns the REPL history file.
func DefaultHistoryPath() string {
	return filepath.Join(storage.DefaultDir(), "history")
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		API: APISection{
			BaseURL:   DefaultBaseURL,
			Timeout:   DefaultTimeout,
			RateLimit: DefaultRateLimit,
			Burst:     DefaultBurst,
		},
		Storage: StorageSection{
			Backend: DefaultStorageBackend,
		},
		Output: DefaultOutput,
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// defaultValues is Default keyed by koanf path.
func defaultValues() map[string]any {
	d := Default()
	return map[string]any{
		"api.base_url":    d.API.BaseURL,
		"api.timeout":     d.API.Timeout.String(),
		"api.rate_limit":  d.API.RateLimit,
		"api.burst":       d.API.Burst,
		"storage.backend": d.Storage.Backend,
		"output":          d.Output,
		"log.level":       d.Log.Level,
		"log.format":      d.Log.Format,
	}
}

// StoragePath returns the configured storage path, or the backend's
// default location under ~/.unionhub.
func (c *CLIConfig) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	switch c.Storage.Backend {
	case storage.BackendBadger:
		return filepath.Join(storage.DefaultDir(), "data")
	case storage.BackendMemory:
		return ""
	default:
		return filepath.Join(storage.DefaultDir(), "state.json")
	}
}

// StorageConfig converts the storage section for storage.Open.
func (c *CLIConfig) StorageConfig() storage.Config {
	return storage.Config{
		Backend:    c.Storage.Backend,
		Path:       c.StoragePath(),
		Passphrase: c.Storage.Passphrase,
	}
}
