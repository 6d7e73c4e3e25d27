package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/yndnr/unionhub-go/internal/cli/connection"
	"github.com/yndnr/unionhub-go/internal/storage"
)

// Verify validates the configuration and returns every problem found.
func Verify(cfg *CLIConfig) error {
	return errors.Join(
		verifyAPI(&cfg.API),
		verifyStorage(&cfg.Storage),
		verifyOutput(cfg.Output),
		verifyLog(&cfg.Log),
	)
}

func verifyAPI(cfg *APISection) error {
	var errs []error
	if _, err := connection.NormalizeBaseURL(cfg.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("api.base_url: %w", err))
	}
	if cfg.Timeout < 0 {
		errs = append(errs, errors.New("api.timeout must not be negative"))
	}
	if cfg.RateLimit < 0 {
		errs = append(errs, errors.New("api.rate_limit must not be negative"))
	}
	if cfg.RateLimit > 0 && cfg.Burst < 1 {
		errs = append(errs, errors.New("api.burst must be at least 1 when rate_limit is set"))
	}
	if cfg.CAFile != "" {
		if _, err := os.Stat(cfg.CAFile); err != nil {
			errs = append(errs, fmt.Errorf("api.ca_file: %w", err))
		}
	}
	return errors.Join(errs...)
}

func verifyStorage(cfg *StorageSection) error {
	switch cfg.Backend {
	case storage.BackendFile, storage.BackendBadger, storage.BackendMemory:
		return nil
	}
	return fmt.Errorf("storage.backend %q is not one of file, badger, memory", cfg.Backend)
}

func verifyOutput(format string) error {
	switch strings.ToLower(format) {
	case "table", "json", "yaml":
		return nil
	}
	return fmt.Errorf("output %q is not one of table, json, yaml", format)
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level))
	}
	switch strings.ToLower(cfg.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not one of text, json", cfg.Format))
	}
	return errors.Join(errs...)
}
