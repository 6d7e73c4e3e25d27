package config

import "time"

// CLIConfig is the configuration for unionhub-cli.
type CLIConfig struct {
	API     APISection     `koanf:"api" yaml:"api"`
	Storage StorageSection `koanf:"storage" yaml:"storage"`
	Output  string         `koanf:"output" yaml:"output"` // table, json, yaml
	Log     LogSection     `koanf:"log" yaml:"log"`
	Metrics MetricsSection `koanf:"metrics" yaml:"metrics"`
}

// APISection configures the REST API client.
type APISection struct {
	BaseURL   string        `koanf:"base_url" yaml:"base_url"`
	Timeout   time.Duration `koanf:"timeout" yaml:"timeout"`
	RateLimit float64       `koanf:"rate_limit" yaml:"rate_limit"` // requests per second, 0 disables
	Burst     int           `koanf:"burst" yaml:"burst"`
	CAFile    string        `koanf:"ca_file" yaml:"ca_file"`
}

// StorageSection configures where the token and locale are kept.
type StorageSection struct {
	Backend    string `koanf:"backend" yaml:"backend"` // file, badger, memory
	Path       string `koanf:"path" yaml:"path"`
	Passphrase string `koanf:"passphrase" yaml:"passphrase"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level" yaml:"level"`
	Format string `koanf:"format" yaml:"format"`
}

// MetricsSection configures client metrics export.
type MetricsSection struct {
	Textfile string `koanf:"textfile" yaml:"textfile"`
}
