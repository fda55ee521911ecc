// Package logging builds the slog logger shared by the CLI, the scan
// engine and the background scheduler.
package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// Options selects the handler and level.
type Options struct {
	// Verbose enables slog.LevelDebug; otherwise Info and above are emitted.
	Verbose bool
	// JSON switches from the text handler to the JSON handler.
	JSON bool
	// HomeDir, when set, is rewritten to "~" in every string attribute.
	HomeDir string
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	if opts.HomeDir != "" {
		handler = NewHomeRedactingHandler(handler, opts.HomeDir)
	}

	return slog.New(handler)
}

// Discard returns a logger that drops everything. Tests and library callers
// that do not care about logs use it.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// HomeRedactingHandler wraps an slog.Handler and shortens the home
// directory prefix of string attributes to "~", so shared logs do not
// carry the operator's username.
type HomeRedactingHandler struct {
	handler slog.Handler
	home    string
}

// NewHomeRedactingHandler wraps handler. If handler is nil the default
// logger's handler is used.
func NewHomeRedactingHandler(handler slog.Handler, home string) *HomeRedactingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &HomeRedactingHandler{handler: handler, home: filepath.Clean(home)}
}

// Enabled delegates to the wrapped handler.
func (h *HomeRedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's attributes and passes it on.
func (h *HomeRedactingHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, h.redact(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redactAttr(a))
		return true
	})
	return h.handler.Handle(ctx, out)
}

// WithAttrs redacts attrs bound ahead of time.
func (h *HomeRedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redactAttr(a)
	}
	return &HomeRedactingHandler{handler: h.handler.WithAttrs(redacted), home: h.home}
}

// WithGroup delegates to the wrapped handler.
func (h *HomeRedactingHandler) WithGroup(name string) slog.Handler {
	return &HomeRedactingHandler{handler: h.handler.WithGroup(name), home: h.home}
}

func (h *HomeRedactingHandler) redactAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, h.redact(v.String()))
	case slog.KindGroup:
		group := v.Group()
		out := make([]any, len(group))
		for i, ga := range group {
			out[i] = h.redactAttr(ga)
		}
		return slog.Group(a.Key, out...)
	default:
		return slog.Attr{Key: a.Key, Value: v}
	}
}

func (h *HomeRedactingHandler) redact(s string) string {
	if h.home == "" || h.home == "/" {
		return s
	}
	if s == h.home {
		return "~"
	}
	return strings.ReplaceAll(s, h.home+string(filepath.Separator), "~"+string(filepath.Separator))
}
