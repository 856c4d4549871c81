package repl

import (
	"sort"
	"strings"
)

// Built-in shell commands.
const (
	cmdHelp = "help"
	cmdExit = "exit"
	cmdQuit = "quit"
)

// Completer provides command completion for the REPL.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over the given command names plus the
// shell built-ins. Duplicates are dropped and the result is sorted.
func NewCompleter(commands ...string) *Completer {
	seen := make(map[string]struct{}, len(commands)+3)
	all := make([]string, 0, len(commands)+3)
	names := make([]string, 0, len(commands)+3)
	names = append(names, commands...)
	for _, cmd := range append(names, cmdHelp, cmdExit, cmdQuit) {
		if cmd == "" {
			continue
		}
		if _, ok := seen[cmd]; ok {
			continue
		}
		seen[cmd] = struct{}{}
		all = append(all, cmd)
	}
	sort.Strings(all)
	return &Completer{commands: all}
}

// Complete returns completion suggestions for the given prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}

// Commands returns every known command name.
func (c *Completer) Commands() []string {
	return append([]string(nil), c.commands...)
}
