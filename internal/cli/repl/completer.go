package repl

import (
	"sort"
	"strings"
	"unicode"
)

// builtins are handled by the REPL itself.
var builtins = []string{"exit", "quit", "history", "?"}

// Completer suggests command lines for a prefix.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over commands plus the REPL built-ins.
// Commands are full paths such as "union list".
func NewCompleter(commands []string) *Completer {
	seen := make(map[string]bool, len(commands)+len(builtins))
	all := make([]string, 0, len(commands)+len(builtins))
	for _, list := range [][]string{commands, builtins} {
		for _, cmd := range list {
			if cmd == "" || seen[cmd] {
				continue
			}
			seen[cmd] = true
			all = append(all, cmd)
		}
	}
	sort.Strings(all)
	return &Completer{commands: all}
}

// Complete returns the commands starting with prefix. Runs of spaces in
// prefix are collapsed; a trailing space is kept so that "union " lists
// only the subcommands of union.
func (c *Completer) Complete(prefix string) []string {
	words := strings.Fields(prefix)
	trailing := len(words) > 0 && strings.TrimRightFunc(prefix, unicode.IsSpace) != prefix
	prefix = strings.Join(words, " ")
	if trailing {
		prefix += " "
	}
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Commands returns every known command.
func (c *Completer) Commands() []string {
	out := make([]string, len(c.commands))
	copy(out, c.commands)
	return out
}
