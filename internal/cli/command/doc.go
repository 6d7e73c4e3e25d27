// Package command provides the unionhub-cli command tree.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: root command, global flags, single-command and REPL mode
//   - runtime.go: construction and shutdown of the shared components
//   - views.go: route views rendered after navigation
//   - auth.go: login, register, logout and whoami
//   - union.go, player.go, character.go: data commands
//   - locale.go: language preference
//   - config.go: config show and validate
//   - repl.go: interactive mode
//
// List commands navigate to a route and let the view render it, so the
// login guard and post-login redirect apply to them. Mutating commands
// check the guard for their route and then call the store.
package command
