// Package main provides the entry point for unionhub-cli.
//
// The CLI is a client for the union management API:
//
//   - Login, registration and a persisted session
//   - Union management (create, list, rename, delete)
//   - Player data upload and player/character browsing
//   - Language preference
//
// Usage:
//
//	unionhub-cli [global flags] [command] [flags]
//	unionhub-cli login -u alice --redirect /players
//	unionhub-cli -o json character list --union-id 1 --sort-by name --order asc
//
// Without a command it starts interactive REPL mode.
package main
