package apprun

import (
	"context"
	"fmt"
	"regexp"
	"sort"

	"github.com/yndnr/apprun-go/pkg/conftree"
)

// Func is a bare application or a command handler. It receives a private
// copy of the merged options and the positional arguments.
type Func func(ctx context.Context, opts conftree.Tree, args []string) (any, error)

// CommandSet maps command names to handlers. Names must be lowercase
// letters only.
type CommandSet map[string]Func

// Commander is an application exposing named commands.
type Commander interface {
	Commands() CommandSet
}

// Runner is an application with a single entry point.
type Runner interface {
	Run(ctx context.Context, opts conftree.Tree, args []string) (any, error)
}

// Initializer is implemented by applications needing one-time setup. Init
// runs during preparation with the live option tree.
type Initializer interface {
	Init(ctx context.Context, opts conftree.Tree) error
}

// Versioner is implemented by applications reporting their own version.
type Versioner interface {
	Version() string
}

// Namer is implemented by applications reporting their own name.
type Namer interface {
	Name() string
}

// Kind is the dispatch style of a wrapped application.
type Kind int

const (
	// KindCallable is a bare Func.
	KindCallable Kind = iota + 1
	// KindSingleEntry is a Runner.
	KindSingleEntry
	// KindCommands is a CommandSet or Commander.
	KindCommands
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindCallable:
		return "callable"
	case KindSingleEntry:
		return "single-entry"
	case KindCommands:
		return "commands"
	default:
		return "invalid"
	}
}

var commandName = regexp.MustCompile(`^[a-z]+$`)

// ValidCommandName reports whether name is lowercase letters only.
func ValidCommandName(name string) bool {
	return commandName.MatchString(name)
}

// application is the classified form of the wrapped value.
type application struct {
	kind     Kind
	entry    Func
	commands CommandSet
	init     Initializer
	version  func() string
	name     string
}

// classify probes app once. Commander wins over Runner when a value
// implements both.
func classify(app any) (*application, error) {
	a := &application{}

	switch v := app.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrInvalidApplication)
	case Func:
		if v == nil {
			return nil, fmt.Errorf("%w: nil func", ErrInvalidApplication)
		}
		a.kind, a.entry = KindCallable, v
	case func(context.Context, conftree.Tree, []string) (any, error):
		if v == nil {
			return nil, fmt.Errorf("%w: nil func", ErrInvalidApplication)
		}
		a.kind, a.entry = KindCallable, v
	case CommandSet:
		cmds, err := snapshot(v)
		if err != nil {
			return nil, err
		}
		a.kind, a.commands = KindCommands, cmds
	case map[string]Func:
		cmds, err := snapshot(v)
		if err != nil {
			return nil, err
		}
		a.kind, a.commands = KindCommands, cmds
	case Commander:
		cmds, err := snapshot(v.Commands())
		if err != nil {
			return nil, err
		}
		a.kind, a.commands = KindCommands, cmds
	case Runner:
		a.kind, a.entry = KindSingleEntry, v.Run
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidApplication, app)
	}

	if i, ok := app.(Initializer); ok {
		a.init = i
	}
	if v, ok := app.(Versioner); ok {
		a.version = v.Version
	}
	if n, ok := app.(Namer); ok {
		a.name = n.Name()
	}
	return a, nil
}

// snapshot copies a command set so later changes to the caller's map do
// not alter dispatch.
func snapshot(set map[string]Func) (CommandSet, error) {
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no commands", ErrInvalidApplication)
	}
	out := make(CommandSet, len(set))
	for name, fn := range set {
		if !ValidCommandName(name) {
			return nil, fmt.Errorf("%w: command name %q must be lowercase letters", ErrInvalidApplication, name)
		}
		if fn == nil {
			return nil, fmt.Errorf("%w: command %q has no handler", ErrInvalidApplication, name)
		}
		out[name] = fn
	}
	return out, nil
}

// names returns the sorted command names.
func (a *application) names() []string {
	names := make([]string, 0, len(a.commands))
	for name := range a.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
