// Package config defines the configuration of unionhub-cli.
//
//   - spec.go: CLIConfig struct (~/.unionhub/cli.yaml)
//   - default.go: default values
//   - loader.go: defaults, file, UNIONHUB_* environment and flag overrides
//   - verify.go, sanitize.go: validation and safe display
package config
