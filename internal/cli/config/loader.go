package config

import (
	"github.com/yndnr/unionhub-go/internal/infra/confloader"
)

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// Path is an explicit config file. It must exist. When empty the
	// default file is read if present.
	Path string

	// Overrides are explicitly set flags keyed by koanf path, for example
	// "api.base_url".
	Overrides map[string]any

	// EnvPrefix defaults to confloader.DefaultEnvPrefix.
	EnvPrefix string
}

// Result is a loaded configuration and where it came from.
type Result struct {
	Config *CLIConfig

	// File is the config file that was read, or "" when none was.
	File string

	// WatchPath is the file to watch for changes: File, or the default
	// path when no file exists yet.
	WatchPath string
}

// Load merges defaults, the config file, UNIONHUB_* environment variables
// and overrides, in increasing priority.
func Load(opts LoadOptions) (*Result, error) {
	loaderOpts := []confloader.Option{
		confloader.WithDefaults(defaultValues()),
	}
	if opts.EnvPrefix != "" {
		loaderOpts = append(loaderOpts, confloader.WithEnvPrefix(opts.EnvPrefix))
	}
	if len(opts.Overrides) > 0 {
		loaderOpts = append(loaderOpts, confloader.WithOverrides(opts.Overrides))
	}

	watch := opts.Path
	if opts.Path != "" {
		loaderOpts = append(loaderOpts, confloader.WithConfigFile(opts.Path))
	} else {
		watch = DefaultConfigPath()
		loaderOpts = append(loaderOpts, confloader.WithOptionalConfigFile(watch))
	}

	loader := confloader.NewLoader(loaderOpts...)
	cfg := &CLIConfig{}
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	res := &Result{Config: cfg, WatchPath: watch}
	if loader.FileLoaded() {
		res.File = loader.FilePath()
	}
	return res, nil
}
