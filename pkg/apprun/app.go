package apprun

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/yndnr/apprun-go/internal/argparse"
	"github.com/yndnr/apprun-go/internal/infra/buildinfo"
	"github.com/yndnr/apprun-go/internal/infra/confloader"
	"github.com/yndnr/apprun-go/internal/telemetry/logger"
	"github.com/yndnr/apprun-go/internal/telemetry/metric"
	"github.com/yndnr/apprun-go/pkg/conftree"
)

// App is the application wrapper. It owns the stored option tree and the
// lifecycle state; the wrapped application only ever sees copies.
//
// An App serializes preparation and option updates. Invocations may be
// repeated sequentially, for example from an interactive shell.
type App struct {
	mu sync.Mutex

	app     *application
	name    string
	caller  Caller
	version string
	source  buildinfo.Source

	options  conftree.Tree
	defaults conftree.Tree
	flags    []Flag

	searchPaths []string
	envPrefix   string
	loader      *confloader.Loader
	configPath  string

	log         logger.Logger
	fixedLogger bool
	metrics     *metric.Registry

	doc     Doc
	usage   UsageRenderer
	out     io.Writer
	console io.Writer

	state atomic.Int32
}

// New classifies app and builds its wrapper. It fails with
// ErrInvalidApplication when app has no usable entry point.
func New(app any, opts ...Option) (*App, error) {
	classified, err := classify(app)
	if err != nil {
		return nil, err
	}

	a := &App{
		app:     classified,
		options: conftree.New(),
		flags:   argparse.DefaultFlags(),
		usage:   CLIRenderer{},
		out:     os.Stdout,
		console: os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.name == "" {
		a.name = a.defaultName()
	}
	a.version, a.source = buildinfo.Resolve(classified.version, a.caller)

	if a.log == nil {
		a.log = logger.Default()
	}

	loaderOpts := []confloader.Option{
		confloader.WithName(a.name),
		confloader.WithDefaults(a.defaults),
		confloader.WithLogger(logger.Slog(a.log)),
	}
	if a.searchPaths != nil {
		loaderOpts = append(loaderOpts, confloader.WithSearchPaths(a.searchPaths...))
	}
	if a.envPrefix != "" {
		loaderOpts = append(loaderOpts, confloader.WithEnvPrefix(a.envPrefix))
	}
	a.loader = confloader.NewLoader(loaderOpts...)

	if a.metrics != nil {
		collector := metric.NewCollector("", a.name, a.version, func() (int, string) {
			s := a.State()
			return int(s), s.String()
		})
		if err := a.metrics.Register(collector); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// defaultName picks the application's own name, then the caller package,
// then the executable.
func (a *App) defaultName() string {
	if a.app.name != "" {
		return a.app.name
	}
	if a.caller.Package != "" {
		return path.Base(a.caller.Package)
	}
	return filepath.Base(os.Args[0])
}

// Name returns the application name.
func (a *App) Name() string {
	return a.name
}

// Version returns the resolved version string, "unknown" when none.
func (a *App) Version() string {
	return a.version
}

// VersionSource reports where the version came from.
func (a *App) VersionSource() buildinfo.Source {
	return a.source
}

// Kind returns the dispatch style of the wrapped application.
func (a *App) Kind() Kind {
	return a.app.kind
}

// Commands returns the sorted command names, or nil for single entry
// applications.
func (a *App) Commands() []string {
	if a.app.kind != KindCommands {
		return nil
	}
	return a.app.names()
}

// Options returns a copy of the stored option tree.
func (a *App) Options() conftree.Tree {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.options.Clone()
}

// SetOptions overrides stored top-level options.
func (a *App) SetOptions(opts conftree.Tree) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.options.Override(opts)
}

// Logger returns the active logger.
func (a *App) Logger() logger.Logger {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.log
}

// ConfigPath returns the config file read during preparation, or "".
func (a *App) ConfigPath() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.configPath
}
