package logger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// fanoutHandler sends each record to every handler that accepts its level.
type fanoutHandler struct {
	handlers []slog.Handler
}

func (h *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, sub := range h.handlers {
		if sub.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, sub := range h.handlers {
		if sub.Enabled(ctx, r.Level) {
			errs = append(errs, sub.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (h *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, sub := range h.handlers {
		next[i] = sub.WithAttrs(attrs)
	}
	return &fanoutHandler{handlers: next}
}

func (h *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(h.handlers))
	for i, sub := range h.handlers {
		next[i] = sub.WithGroup(name)
	}
	return &fanoutHandler{handlers: next}
}

// PatternTimeFormat is the layout of the %d conversion.
const PatternTimeFormat = "2006-01-02 15:04:05"

var levelColors = map[string]color.Attribute{
	"TRACE": color.FgHiBlack,
	"DEBUG": color.FgCyan,
	"INFO":  color.FgGreen,
	"WARN":  color.FgYellow,
	"ERROR": color.FgRed,
	"FATAL": color.FgHiRed,
}

// patternHandler renders records through a layout template:
//
//	%d  timestamp        %p  level
//	%c  category         %m  message and attributes
//	%n  newline          %%  literal percent
type patternHandler struct {
	mu       *sync.Mutex
	w        io.Writer
	level    slog.Leveler
	pattern  string
	category string
	color    bool
	prefix   string
	attrs    []slog.Attr
}

func newPatternHandler(w io.Writer, level slog.Leveler, pattern, category string, useColor bool) *patternHandler {
	if category == "" {
		category = "main"
	}
	return &patternHandler{
		mu:       &sync.Mutex{},
		w:        w,
		level:    level,
		pattern:  pattern,
		category: category,
		color:    useColor,
	}
}

func (h *patternHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *patternHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	for i := 0; i < len(h.pattern); i++ {
		c := h.pattern[i]
		if c != '%' || i+1 == len(h.pattern) {
			buf.WriteByte(c)
			continue
		}
		i++
		switch h.pattern[i] {
		case 'd':
			ts := r.Time
			if ts.IsZero() {
				ts = time.Now()
			}
			buf.WriteString(ts.Format(PatternTimeFormat))
		case 'p':
			buf.WriteString(h.levelText(r.Level))
		case 'c':
			buf.WriteString(h.category)
		case 'm':
			buf.WriteString(r.Message)
			h.writeAttrs(&buf, r)
		case 'n':
			buf.WriteByte('\n')
		case '%':
			buf.WriteByte('%')
		default:
			buf.WriteByte('%')
			buf.WriteByte(h.pattern[i])
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *patternHandler) levelText(level slog.Level) string {
	name := LevelName(level)
	if !h.color {
		return name
	}
	c := color.New(levelColors[name])
	c.EnableColor()
	return c.Sprint(name)
}

func (h *patternHandler) writeAttrs(buf *bytes.Buffer, r slog.Record) {
	for _, a := range h.attrs {
		writeAttr(buf, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(buf, h.prefix, redactSensitive(a))
		return true
	})
}

func writeAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := prefix
		if a.Key != "" {
			group = prefix + a.Key + "."
		}
		for _, sub := range a.Value.Group() {
			writeAttr(buf, group, sub)
		}
		return
	}
	val := a.Value.String()
	if strings.ContainsAny(val, " \t\"=") {
		val = fmt.Sprintf("%q", val)
	}
	fmt.Fprintf(buf, " %s%s=%s", prefix, a.Key, val)
}

func (h *patternHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		a = redactSensitive(a)
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *patternHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}
