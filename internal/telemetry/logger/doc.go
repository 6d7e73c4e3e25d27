// Package logger provides structured logging for unionhub-cli.
//
//   - logger.go: slog-backed Logger, level handling, process default
//   - context.go: context propagation of the logger and request IDs
//   - redact.go: masking of credentials before they reach a handler
//
// The CLI logs diagnostics to stderr only; command output goes to stdout.
// The default level is warn so that an interactive user sees nothing
// unless something is wrong or --verbose is given.
package logger
