package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/yndnr/apprun-go/pkg/conftree"
)

// Appender kinds.
const (
	KindConsole = "console"
	KindStderr  = "stderr"
	KindStdout  = "stdout"
	KindFile    = "file"
)

// Appender formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DefaultPattern is the layout used by console appenders without a format.
const DefaultPattern = "%d [%p] %c - %m%n"

// Appender describes one log destination.
type Appender struct {
	// Kind is console (stderr), stderr, stdout or file.
	Kind string
	// Destination is the file path for file appenders.
	Destination string
	// Threshold is the minimum level written; defaults to WARN.
	Threshold string
	// Format is text, json or a pattern layout such as "%d %p %m%n".
	Format string
}

// DefaultAppender returns a console appender at WARN.
func DefaultAppender() Appender {
	return Appender{Kind: KindConsole, Threshold: DefaultLevel}
}

func (a Appender) threshold() string {
	if a.Threshold == "" {
		return DefaultLevel
	}
	return a.Threshold
}

func (a Appender) kind() string {
	if a.Kind == "" {
		return KindConsole
	}
	return strings.ToLower(a.Kind)
}

// open returns the writer for the appender and, for files, its closer.
// A non-nil override replaces console destinations.
func (a Appender) open(override io.Writer) (io.Writer, io.Closer, error) {
	switch a.kind() {
	case KindConsole, KindStderr:
		if override != nil {
			return override, nil, nil
		}
		return os.Stderr, nil, nil
	case KindStdout:
		if override != nil {
			return override, nil, nil
		}
		return os.Stdout, nil, nil
	case KindFile:
		if a.Destination == "" {
			return nil, nil, fmt.Errorf("file appender needs a destination")
		}
		if err := os.MkdirAll(filepath.Dir(a.Destination), 0755); err != nil {
			return nil, nil, err
		}
		f, err := os.OpenFile(a.Destination, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, err
		}
		return f, f, nil
	default:
		return nil, nil, fmt.Errorf("unknown appender kind %q", a.Kind)
	}
}

func (a Appender) handler(w io.Writer, level slog.Leveler, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, attr slog.Attr) slog.Attr {
			if len(groups) == 0 && attr.Key == slog.LevelKey {
				if lvl, ok := attr.Value.Any().(slog.Level); ok {
					return slog.String(slog.LevelKey, LevelName(lvl))
				}
			}
			return redactSensitive(attr)
		},
	}

	format := a.Format
	if format == "" {
		format = FormatText
		if a.kind() != KindFile {
			format = DefaultPattern
		}
	}

	switch strings.ToLower(format) {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatText:
		return slog.NewTextHandler(w, opts)
	default:
		return newPatternHandler(w, level, format, cfg.Name, colorable(w))
	}
}

// colorable reports whether w is a terminal.
func colorable(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// FromOptions builds a Config from application options.
//
// The "logger" option is either a kind name ("stderr"), a single appender
// subtree ({kind, destination, threshold, format}) or a list of them keyed
// by position. The "loglevel" option overrides every threshold.
func FromOptions(name string, opts conftree.Tree) (Config, error) {
	cfg := Config{
		Name:  name,
		Level: opts.String("loglevel"),
	}

	raw, ok := opts.Lookup("logger")
	if !ok {
		cfg.Appenders = []Appender{DefaultAppender()}
		return cfg, cfg.validate()
	}

	switch v := raw.(type) {
	case string:
		if v == "" {
			cfg.Appenders = []Appender{DefaultAppender()}
		} else {
			cfg.Appenders = []Appender{{Kind: v, Threshold: DefaultLevel}}
		}
	case conftree.Tree:
		if isAppender(v) {
			cfg.Appenders = []Appender{appenderFrom(v)}
			break
		}
		for _, key := range sortedIndexKeys(v) {
			sub, ok := v[key].(conftree.Tree)
			if !ok {
				return cfg, fmt.Errorf("logger.%s: expected an appender", key)
			}
			cfg.Appenders = append(cfg.Appenders, appenderFrom(sub))
		}
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Level != "" {
		if _, err := ParseLevel(c.Level); err != nil {
			return err
		}
	}
	for i, a := range c.Appenders {
		if _, err := ParseLevel(a.threshold()); err != nil {
			return fmt.Errorf("appender %d: %w", i, err)
		}
		switch a.kind() {
		case KindConsole, KindStderr, KindStdout:
		case KindFile:
			if a.Destination == "" {
				return fmt.Errorf("appender %d: file appender needs a destination", i)
			}
		default:
			return fmt.Errorf("appender %d: unknown kind %q", i, a.Kind)
		}
	}
	return nil
}

var appenderKeys = []string{"kind", "destination", "threshold", "format"}

func isAppender(t conftree.Tree) bool {
	for _, k := range appenderKeys {
		if _, ok := t[k].(string); ok {
			return true
		}
	}
	return false
}

func appenderFrom(t conftree.Tree) Appender {
	return Appender{
		Kind:        t.String("kind"),
		Destination: t.String("destination"),
		Threshold:   t.String("threshold"),
		Format:      t.String("format"),
	}
}

// sortedIndexKeys orders numeric keys numerically and the rest lexically after them.
func sortedIndexKeys(t conftree.Tree) []string {
	keys := t.Keys()
	sort.SliceStable(keys, func(i, j int) bool {
		ni, ei := strconv.Atoi(keys[i])
		nj, ej := strconv.Atoi(keys[j])
		switch {
		case ei == nil && ej == nil:
			return ni < nj
		case ei == nil:
			return true
		case ej == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}
