package apprun

import (
	"context"
	"fmt"

	"github.com/yndnr/apprun-go/internal/argparse"
	"github.com/yndnr/apprun-go/internal/telemetry/metric"
	"github.com/yndnr/apprun-go/pkg/conftree"
)

// ParseArgs parses command-line tokens and merges the resulting options
// into the stored tree, command-line values winning. When no config flag
// was given the "config" option is initialized to "" unless already set,
// which asks preparation to discover a file by name.
//
// The returned Result tells the caller whether to continue.
func (a *App) ParseArgs(tokens []string) *argparse.Result {
	res := argparse.Parse(tokens, a.flags)
	if res.Directive == argparse.Usage {
		return res
	}

	opts := res.Options.Clone()
	if !res.ConfigGiven {
		delete(opts, argparse.ConfigKey)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.options.Merge(opts)
	if !res.ConfigGiven {
		a.options.FillAbsent(conftree.Tree{argparse.ConfigKey: ""})
	}
	return res
}

// RunWithArgs is the command-line entry point: it parses tokens into the
// stored options, handles help, version and usage errors, then executes.
func (a *App) RunWithArgs(ctx context.Context, tokens []string) (Outcome, error) {
	res := a.ParseArgs(tokens)
	if out, halted, err := a.halt(res); halted {
		return out, err
	}
	return a.Execute(ctx, res.Args, nil)
}

// Dispatch runs one line of tokens without touching the stored options:
// parsed options are deep-merged into the invocation's private copy only.
// Shells use it to run many commands on one prepared App.
//
// A config file is only read while preparing, so a "config" flag or option
// on a dispatched line is a usage error.
func (a *App) Dispatch(ctx context.Context, tokens []string) (Outcome, error) {
	res := argparse.Parse(tokens, a.flags)
	if res.Directive == argparse.Continue && res.ConfigGiven {
		res.Directive = argparse.Usage
		res.Err = &argparse.UsageError{Flag: argparse.ConfigKey, Reason: "only applies when the application starts"}
	}
	if out, halted, err := a.halt(res); halted {
		return out, err
	}

	overlay := res.Options
	delete(overlay, argparse.ConfigKey)
	return a.invoke(ctx, invocation{args: res.Args, overlay: overlay})
}

// halt handles the terminating directives.
func (a *App) halt(res *argparse.Result) (Outcome, bool, error) {
	if !res.Directive.Terminates() {
		return Outcome{}, false, nil
	}

	out := Outcome{Halted: true, Code: res.Directive.ExitCode()}
	if a.metrics != nil {
		a.metrics.ObserveInvocation("", metric.OutcomeHalted, 0)
	}

	switch res.Directive {
	case argparse.Help:
		return out, true, a.RenderUsage()
	case argparse.Version:
		_, err := fmt.Fprintf(a.out, "%s %s\n", a.name, a.version)
		return out, true, err
	case argparse.Usage:
		fmt.Fprintf(a.console, "%s: %v\n", a.name, res.Err)
		return out, true, a.usage.Render(a.console, a.Doc())
	default:
		return out, true, nil
	}
}
