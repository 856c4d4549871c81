package apprun

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/yndnr/apprun-go/internal/telemetry/logger"
	"github.com/yndnr/apprun-go/internal/telemetry/metric"
	"github.com/yndnr/apprun-go/pkg/conftree"
)

// CommandKey is the option naming the command to run.
const CommandKey = "command"

// MetricsTextfileKey is the option naming a Prometheus textfile written
// after every invocation.
const MetricsTextfileKey = "metrics.textfile"

// Outcome is the result of one invocation.
type Outcome struct {
	// Command is the resolved command name, empty for single entry styles.
	Command string
	// Value is whatever the application returned.
	Value any
	// Err is the contained application failure, an *ApplicationError.
	Err error
	// Halted is set when the invocation stopped before running the
	// application (help, version or a usage error).
	Halted bool
	// Code is the exit code requested by a halted invocation.
	Code int
}

// ExitCode maps the outcome to a process exit code.
func (o Outcome) ExitCode() int {
	switch {
	case o.Halted:
		return o.Code
	case o.Err != nil:
		return 1
	default:
		return 0
	}
}

// invocation is one call into the application.
type invocation struct {
	command  string
	args     []string
	override conftree.Tree
	overlay  conftree.Tree
}

// Execute runs the application with the stored options, top-level
// overrides applied on a private copy. For command sets the command comes
// from the "command" option or the first positional argument.
//
// Harness failures (preparation, missing or unknown command) are returned.
// Application failures are logged and reported in Outcome.Err.
func (a *App) Execute(ctx context.Context, args []string, overrides conftree.Tree) (Outcome, error) {
	return a.invoke(ctx, invocation{args: args, override: overrides})
}

// ExecuteCommand is Execute with an explicit command name, which takes
// precedence over the "command" option and positional arguments.
func (a *App) ExecuteCommand(ctx context.Context, name string, args []string, overrides conftree.Tree) (Outcome, error) {
	return a.invoke(ctx, invocation{command: name, args: args, override: overrides})
}

func (a *App) invoke(ctx context.Context, inv invocation) (Outcome, error) {
	start := time.Now()

	opts, log, err := a.begin(ctx, inv)
	if err != nil {
		return Outcome{}, err
	}

	fn, name, args, err := a.resolve(opts, inv)
	if err != nil {
		a.observe(name, metric.OutcomeError, start, opts)
		log.Debug("dispatch failed", "command", name, "error", err)
		return Outcome{Command: name}, err
	}

	ctx = logger.WithRequestID(ctx, logger.NewRequestID())
	ctx = logger.WithCommand(ctx, name)
	ctx = logger.WithLogger(ctx, log)

	a.state.Store(int32(StateExecuting))
	value, appErr := a.call(ctx, fn, name, opts, args)
	a.state.Store(int32(StatePrepared))

	out := Outcome{Command: name, Value: value}
	if appErr != nil {
		out.Err = appErr
		logger.L(ctx).Error(appErr.Error())
		a.observe(name, metric.OutcomeFailed, start, opts)
		return out, nil
	}

	a.observe(name, metric.OutcomeOK, start, opts)
	return out, nil
}

// begin prepares the App and returns the private option copy for this
// invocation.
func (a *App) begin(ctx context.Context, inv invocation) (conftree.Tree, logger.Logger, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.prepareLocked(ctx); err != nil {
		return nil, nil, err
	}

	opts := a.options.Clone()
	if inv.overlay != nil {
		opts.Merge(inv.overlay.Clone())
	}
	if inv.override != nil {
		opts.Override(inv.override)
	}
	return opts, a.log, nil
}

// resolve picks the handler. For command sets the name comes from the
// explicit argument, then the "command" option, then the first positional
// argument, which is consumed.
func (a *App) resolve(opts conftree.Tree, inv invocation) (Func, string, []string, error) {
	args := inv.args
	if a.app.kind != KindCommands {
		return a.app.entry, "", args, nil
	}

	name := inv.command
	if name == "" {
		name = opts.String(CommandKey)
	}
	if name == "" && len(args) > 0 {
		name, args = args[0], args[1:]
	}

	if name == "" {
		return nil, "", args, ErrMissingCommand
	}
	if !ValidCommandName(name) {
		return nil, name, args, &UnknownCommandError{Command: name, Reason: "must be lowercase letters only"}
	}
	fn, ok := a.app.commands[name]
	if !ok {
		return nil, name, args, &UnknownCommandError{Command: name, Reason: "not registered"}
	}
	return fn, name, args, nil
}

// call runs fn, turning returned errors and panics into *ApplicationError.
func (a *App) call(ctx context.Context, fn Func, name string, opts conftree.Tree, args []string) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.L(ctx).Debug("application panic", "stack", string(debug.Stack()))
			value = nil
			err = &ApplicationError{Command: name, Cause: fmt.Errorf("panic: %v", r), Panic: r}
		}
	}()

	value, cause := fn(ctx, opts, append([]string{}, args...))
	if cause != nil {
		return nil, &ApplicationError{Command: name, Cause: cause}
	}
	return value, nil
}

// observe records the invocation and refreshes the metrics textfile when
// one is configured.
func (a *App) observe(command, outcome string, start time.Time, opts conftree.Tree) {
	if a.metrics == nil {
		return
	}
	a.metrics.ObserveInvocation(command, outcome, time.Since(start))

	if path := opts.String(MetricsTextfileKey); path != "" {
		if err := a.metrics.WriteTextfile(path); err != nil {
			a.Logger().Warn("write metrics textfile failed", "path", path, "error", err)
		}
	}
}
