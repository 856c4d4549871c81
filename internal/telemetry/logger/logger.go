package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
)

// Logger is the application logger interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// Levels beyond the four slog defines.
const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
	LevelOff   = slog.Level(16)
)

// DefaultLevel is the threshold used when nothing is configured.
const DefaultLevel = "WARN"

// Config holds logger configuration.
type Config struct {
	// Name is the category printed by the %c pattern conversion.
	Name string
	// Level, when set, overrides every appender threshold.
	Level string
	// Appenders receive every record at or above their threshold.
	Appenders []Appender
	// Output replaces the destination of console appenders (tests, embedding).
	Output io.Writer
	// AddSource adds source file information to log entries.
	AddSource bool
}

// DefaultConfig returns a default logger configuration: one console
// appender at WARN.
func DefaultConfig() Config {
	return Config{
		Appenders: []Appender{DefaultAppender()},
	}
}

// slogLogger wraps slog.Logger with additional functionality.
type slogLogger struct {
	logger *slog.Logger
	ctx    context.Context
	files  []io.Closer
}

// New creates a new logger with the given configuration.
func New(cfg Config) (Logger, error) {
	appenders := cfg.Appenders
	if len(appenders) == 0 {
		appenders = []Appender{DefaultAppender()}
	}

	var override *slog.Level
	if cfg.Level != "" {
		lvl, err := ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		override = &lvl
	}

	l := &slogLogger{ctx: context.Background()}
	handlers := make([]slog.Handler, 0, len(appenders))

	for i, a := range appenders {
		threshold, err := ParseLevel(a.threshold())
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("appender %d: %w", i, err)
		}
		if override != nil {
			threshold = *override
		}

		w, closer, err := a.open(cfg.Output)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("appender %d: %w", i, err)
		}
		if closer != nil {
			l.files = append(l.files, closer)
		}

		handlers = append(handlers, a.handler(w, threshold, cfg))
	}

	var handler slog.Handler = &fanoutHandler{handlers: handlers}
	if len(handlers) == 1 {
		handler = handlers[0]
	}
	l.logger = slog.New(handler)
	return l, nil
}

// Slog exposes the underlying *slog.Logger for libraries that want one.
func Slog(l Logger) *slog.Logger {
	if sl, ok := l.(*slogLogger); ok {
		return sl.logger
	}
	return slog.Default()
}

// FromSlog wraps an existing *slog.Logger. Its level is managed by the
// caller.
func FromSlog(l *slog.Logger) Logger {
	if l == nil {
		l = slog.Default()
	}
	return &slogLogger{logger: l, ctx: context.Background()}
}

// Close releases file appenders. The logger must not be used afterwards.
func (l *slogLogger) Close() error {
	var errs []error
	for _, c := range l.files {
		errs = append(errs, c.Close())
	}
	l.files = nil
	return errors.Join(errs...)
}

func (l *slogLogger) Debug(msg string, args ...any) {
	l.logger.DebugContext(l.ctx, msg, args...)
}

func (l *slogLogger) Info(msg string, args ...any) {
	l.logger.InfoContext(l.ctx, msg, args...)
}

func (l *slogLogger) Warn(msg string, args ...any) {
	l.logger.WarnContext(l.ctx, msg, args...)
}

func (l *slogLogger) Error(msg string, args ...any) {
	l.logger.ErrorContext(l.ctx, msg, args...)
}

func (l *slogLogger) With(args ...any) Logger {
	return &slogLogger{
		logger: l.logger.With(args...),
		ctx:    l.ctx,
		files:  l.files,
	}
}

func (l *slogLogger) WithContext(ctx context.Context) Logger {
	return &slogLogger{
		logger: l.logger,
		ctx:    ctx,
		files:  l.files,
	}
}

// ParseLevel converts a level name to slog.Level. Names are case-insensitive:
// TRACE, DEBUG, INFO, WARN (WARNING), ERROR, FATAL, OFF.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE", "ALL":
		return LevelTrace, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "FATAL":
		return LevelFatal, nil
	case "OFF":
		return LevelOff, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", level)
	}
}

// LevelName returns the upper-case name of level.
func LevelName(level slog.Level) string {
	switch {
	case level <= LevelTrace:
		return "TRACE"
	case level <= slog.LevelDebug:
		return "DEBUG"
	case level <= slog.LevelInfo:
		return "INFO"
	case level <= slog.LevelWarn:
		return "WARN"
	case level <= slog.LevelError:
		return "ERROR"
	case level <= LevelFatal:
		return "FATAL"
	default:
		return "OFF"
	}
}

// Global logger instance for convenience methods.
var defaultLogger atomic.Pointer[slogLogger]

func init() {
	l, _ := New(Config{Output: os.Stderr})
	defaultLogger.Store(l.(*slogLogger))
}

// SetDefault sets the default global logger and routes log/slog's default
// through it.
func SetDefault(l Logger) {
	if sl, ok := l.(*slogLogger); ok {
		defaultLogger.Store(sl)
		slog.SetDefault(sl.logger)
	}
}

// Default returns the default global logger.
func Default() Logger {
	return defaultLogger.Load()
}

// Debug logs at debug level using the default logger.
func Debug(msg string, args ...any) {
	defaultLogger.Load().Debug(msg, args...)
}

// Info logs at info level using the default logger.
func Info(msg string, args ...any) {
	defaultLogger.Load().Info(msg, args...)
}

// Warn logs at warn level using the default logger.
func Warn(msg string, args ...any) {
	defaultLogger.Load().Warn(msg, args...)
}

// Error logs at error level using the default logger.
func Error(msg string, args ...any) {
	defaultLogger.Load().Error(msg, args...)
}
