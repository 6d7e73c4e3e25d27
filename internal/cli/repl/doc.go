// Package repl implements the interactive mode of unionhub-cli.
//
//   - repl.go: read-eval-print loop, built-in commands, argument splitting
//   - completer.go: command name completion
//   - history.go: command history persisted to ~/.unionhub/history
//
// The loop does not parse commands itself. Each line is split into
// arguments and handed to an Executor, which runs it through the same
// command tree as single-command mode.
package repl
