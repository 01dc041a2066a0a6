// Package testlog provides a slog.Handler with deterministic output for tests.
package testlog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Handler prints the message index (starting from 0), level and message
// followed by its attributes, without the timestamp.
//
// Handlers derived through WithAttrs and WithGroup share the index and the
// writer of their parent, so output from a request-scoped logger interleaves
// correctly with the root logger.
type Handler struct {
	out         *output
	attrs       []slog.Attr
	groups      []string
	ignoreDebug bool
}

type output struct {
	mu    sync.Mutex
	w     io.Writer
	index int
}

type Option func(*Handler)

// WithIgnoreDebug drops DEBUG records.
func WithIgnoreDebug() Option {
	return func(h *Handler) {
		h.ignoreDebug = true
	}
}

func New(w io.Writer, opts ...Option) *Handler {
	h := &Handler{out: &output{w: w}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Logger is a shorthand for slog.New(New(w, opts...)).
func Logger(w io.Writer, opts ...Option) *slog.Logger {
	return slog.New(New(w, opts...))
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return !(h.ignoreDebug && level == slog.LevelDebug)
}

//nolint:gocritic
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	if !h.Enabled(context.Background(), r.Level) {
		return nil
	}

	attrs := h.attrsToString(&r)

	h.out.mu.Lock()
	defer h.out.mu.Unlock()

	var err error
	if attrs != "" {
		_, err = fmt.Fprintf(h.out.w, "[%d] %s: %s %s\n", h.out.index, r.Level, r.Message, attrs)
	} else {
		_, err = fmt.Fprintf(h.out.w, "[%d] %s: %s\n", h.out.index, r.Level, r.Message)
	}
	h.out.index++
	return err
}

func (h *Handler) attrsToString(r *slog.Record) string {
	parts := make([]string, 0, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		parts = append(parts, formatAttr(a, ""))
	}

	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}
	r.Attrs(func(a slog.Attr) bool {
		parts = append(parts, formatAttr(a, prefix))
		return true
	})
	return strings.Join(parts, ", ")
}

func formatAttr(a slog.Attr, prefix string) string {
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		parts := make([]string, 0, len(group))
		for _, ga := range group {
			parts = append(parts, formatAttr(ga, prefix+a.Key+"."))
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprintf("%s%s=%v", prefix, a.Key, a.Value)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefix := ""
	if len(h.groups) > 0 {
		prefix = strings.Join(h.groups, ".") + "."
	}

	// attributes are stored with the group path already applied
	newAttrs := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		a.Key = prefix + a.Key
		newAttrs = append(newAttrs, a)
	}

	return &Handler{
		out:         h.out,
		attrs:       append(h.attrs[:len(h.attrs):len(h.attrs)], newAttrs...),
		groups:      h.groups,
		ignoreDebug: h.ignoreDebug,
	}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &Handler{
		out:         h.out,
		attrs:       h.attrs,
		groups:      append(h.groups[:len(h.groups):len(h.groups)], name),
		ignoreDebug: h.ignoreDebug,
	}
}
