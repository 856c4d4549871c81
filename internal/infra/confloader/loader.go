package confloader

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/yndnr/apprun-go/pkg/conftree"
)

// Loader resolves configuration sources and merges them into option trees.
type Loader struct {
	name        string
	searchPaths []string
	envPrefix   string
	defaults    conftree.Tree
	logger      *slog.Logger
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithName sets the application name used for discovery.
func WithName(name string) Option {
	return func(l *Loader) {
		l.name = name
	}
}

// WithSearchPaths replaces the discovery directories.
func WithSearchPaths(dirs ...string) Option {
	return func(l *Loader) {
		l.searchPaths = append([]string(nil), dirs...)
	}
}

// WithEnvPrefix enables the environment overlay. PREFIX_DB_HOST becomes db.host.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		if prefix != "" && !strings.HasSuffix(prefix, "_") {
			prefix += "_"
		}
		l.envPrefix = prefix
	}
}

// WithDefaults sets the lowest-priority values.
func WithDefaults(defaults conftree.Tree) Option {
	return func(l *Loader) {
		l.defaults = defaults.Clone()
	}
}

// WithLogger sets the logger for discovery diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.searchPaths == nil {
		l.searchPaths = DefaultSearchPaths(l.name)
	}

	return l
}

// Load merges the configuration named by source into dst and returns the
// path that was read. An empty source triggers discovery; finding nothing
// is not an error and returns "".
//
// Only keys missing from dst are filled.
func (l *Loader) Load(dst conftree.Tree, source string) (string, error) {
	path := source
	if path == "" {
		path = l.Discover()
		if path == "" {
			l.logger.Debug("no configuration file found",
				"name", l.name,
				"search_paths", l.searchPaths,
			)
		}
	} else if _, err := os.Stat(path); err != nil {
		return "", &LoadError{Source: path, Cause: err}
	}

	if err := l.merge(dst, path); err != nil {
		return "", err
	}
	return path, nil
}

// Apply merges defaults and the environment overlay into dst without
// reading any file.
func (l *Loader) Apply(dst conftree.Tree) error {
	return l.merge(dst, "")
}

// merge stacks defaults, file and environment in one koanf instance, later
// sources winning, then fills dst from the result.
func (l *Loader) merge(dst conftree.Tree, path string) error {
	k := koanf.New(conftree.Delim)

	if len(l.defaults) > 0 {
		if err := k.Load(mapProvider(l.defaults.Native()), nil); err != nil {
			return fmt.Errorf("load defaults: %w", err)
		}
	}

	if path != "" {
		if err := l.LoadFile(k, path); err != nil {
			return err
		}
	}

	if l.envPrefix != "" {
		if err := l.LoadEnv(k); err != nil {
			return fmt.Errorf("load env: %w", err)
		}
	}

	dst.FillAbsent(conftree.FromMap(k.Raw()))
	return nil
}

// LoadFile parses path into k using the parser registered for its extension.
func (l *Loader) LoadFile(k *koanf.Koanf, path string) error {
	parser, err := ParserFor(path)
	if err != nil {
		return &LoadError{Source: path, Cause: err}
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return &LoadError{Source: path, Cause: err}
	}

	l.logger.Debug("configuration file loaded", "path", path)
	return nil
}

// LoadEnv loads variables carrying the configured prefix into k.
// Example: MYAPP_DB_HOST=localhost -> db.host
func (l *Loader) LoadEnv(k *koanf.Koanf) error {
	envTransformer := func(s string) string {
		s = strings.TrimPrefix(s, l.envPrefix)
		s = strings.ToLower(s)
		s = strings.ReplaceAll(s, "_", conftree.Delim)
		return s
	}

	return k.Load(env.Provider(l.envPrefix, conftree.Delim, envTransformer), nil)
}

// SearchPaths returns the discovery directories in order.
func (l *Loader) SearchPaths() []string {
	return append([]string(nil), l.searchPaths...)
}

// IsNotFound reports whether err means the requested file does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
