// Package confloader loads layered configuration with koanf.
//
// Sources, highest priority first:
//
//  1. Overrides (command-line flags)
//  2. Environment variables
//  3. Configuration file (YAML)
//  4. Defaults
//
// Environment variables carry a prefix and use a double underscore to
// separate nesting levels, so UNIONHUB_API__BASE_URL sets api.base_url
// while single underscores stay part of the key name.
//
// Watcher reports changes to a configuration file so long-lived sessions
// can reload it.
package confloader
