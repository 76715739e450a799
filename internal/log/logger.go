package log

import (
	"context"
	"io"
	"log/slog"
)

// maxAttrLen is the longest string attribute value emitted as-is.
// Longer values are cut and marked, keeping log lines single-screen.
const maxAttrLen = 512

// TrimHandler is a slog.Handler wrapper that truncates long string
// attribute values before delegating to the underlying handler.
type TrimHandler struct {
	inner slog.Handler
}

// NewTrimHandler wraps a handler with value trimming.
func NewTrimHandler(inner slog.Handler) *TrimHandler {
	return &TrimHandler{inner: inner}
}

// Enabled implements slog.Handler.
func (h *TrimHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler, trimming string attributes in place.
func (h *TrimHandler) Handle(ctx context.Context, record slog.Record) error {
	trimmed := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		trimmed.AddAttrs(trimAttr(attr))
		return true
	})
	return h.inner.Handle(ctx, trimmed)
}

// WithAttrs implements slog.Handler.
func (h *TrimHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		out[i] = trimAttr(attr)
	}
	return &TrimHandler{inner: h.inner.WithAttrs(out)}
}

// WithGroup implements slog.Handler.
func (h *TrimHandler) WithGroup(name string) slog.Handler {
	return &TrimHandler{inner: h.inner.WithGroup(name)}
}

// trimAttr shortens string values beyond maxAttrLen. Groups are walked
// recursively; non-string values pass through untouched.
func trimAttr(attr slog.Attr) slog.Attr {
	switch attr.Value.Kind() {
	case slog.KindString:
		s := attr.Value.String()
		if len(s) > maxAttrLen {
			attr.Value = slog.StringValue(s[:maxAttrLen] + "...(trimmed)")
		}
	case slog.KindGroup:
		members := attr.Value.Group()
		out := make([]slog.Attr, len(members))
		for i, member := range members {
			out[i] = trimAttr(member)
		}
		attr.Value = slog.GroupValue(out...)
	}
	return attr
}

// NewLogger creates the crawler's logger writing to w. Verbose enables
// debug-level records; otherwise info and above are emitted.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	inner := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewTrimHandler(inner))
}
