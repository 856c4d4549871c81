package apprun

import (
	"io"
	"log/slog"

	"github.com/yndnr/apprun-go/internal/argparse"
	"github.com/yndnr/apprun-go/internal/infra/buildinfo"
	"github.com/yndnr/apprun-go/internal/telemetry/logger"
	"github.com/yndnr/apprun-go/internal/telemetry/metric"
	"github.com/yndnr/apprun-go/pkg/conftree"
)

// Flag is a recognized command-line flag.
type Flag = argparse.Flag

// Caller identifies the embedding package for version fallback.
type Caller = buildinfo.Caller

// Option configures an App.
type Option func(*App)

// WithName sets the application name used for config discovery, the
// logger category and the version line.
func WithName(name string) Option {
	return func(a *App) {
		a.name = name
	}
}

// WithCaller records the embedding package and its declared version.
func WithCaller(c Caller) Option {
	return func(a *App) {
		a.caller = c
	}
}

// WithOptions seeds the stored option tree. Values are copied.
func WithOptions(opts conftree.Tree) Option {
	return func(a *App) {
		a.options.Merge(opts.Clone())
	}
}

// WithDefaults sets values used when neither the command line, the
// environment nor the config file provides them.
func WithDefaults(defaults conftree.Tree) Option {
	return func(a *App) {
		a.defaults = defaults.Clone()
	}
}

// WithFlags appends application flags to the built-in set.
func WithFlags(flags ...Flag) Option {
	return func(a *App) {
		a.flags = append(a.flags, flags...)
	}
}

// WithDoc sets the documentation shown by --help.
func WithDoc(doc Doc) Option {
	return func(a *App) {
		a.doc = doc
	}
}

// WithUsageRenderer replaces the help renderer.
func WithUsageRenderer(r UsageRenderer) Option {
	return func(a *App) {
		a.usage = r
	}
}

// WithOutput sets where help and version text go. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *App) {
		a.out = w
	}
}

// WithConsole redirects console log appenders and usage errors. Defaults to
// stderr.
func WithConsole(w io.Writer) Option {
	return func(a *App) {
		a.console = w
	}
}

// WithSearchPaths replaces the config discovery directories.
func WithSearchPaths(dirs ...string) Option {
	return func(a *App) {
		a.searchPaths = dirs
	}
}

// WithEnvPrefix enables the environment overlay: PREFIX_A_B=v sets a.b.
func WithEnvPrefix(prefix string) Option {
	return func(a *App) {
		a.envPrefix = prefix
	}
}

// WithMetrics records invocations and config loads in reg.
func WithMetrics(reg *metric.Registry) Option {
	return func(a *App) {
		a.metrics = reg
	}
}

// WithLogger installs a ready logger instead of building one from the
// "logger" and "loglevel" options.
func WithLogger(l logger.Logger) Option {
	return func(a *App) {
		a.log = l
		a.fixedLogger = true
	}
}

// WithSlog is WithLogger for a *slog.Logger.
func WithSlog(l *slog.Logger) Option {
	return WithLogger(logger.FromSlog(l))
}
