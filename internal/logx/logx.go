// Package logx wraps log/slog with a handler tailored to a single Flash
// instance: every record is tagged with the owning component name so a
// caller juggling several probed parts can tell which one logged what.
package logx

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Handler decorates an slog.Handler, prefixing the component name onto
// every record and serializing writes with its own mutex so a Flash's
// logger can be shared safely across the bus-lock boundary.
type Handler struct {
	component string
	h         slog.Handler
	mu        *sync.Mutex
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{component: h.component, h: h.h.WithAttrs(attrs), mu: h.mu}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{component: h.component, h: h.h.WithGroup(name), mu: h.mu}
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.component != "" {
		r = r.Clone()
		r.Message = "[" + h.component + "] " + r.Message
	}
	return h.h.Handle(ctx, r)
}

// New builds a *slog.Logger scoped to component, writing through inner
// (slog.Default()'s handler when inner is nil).
func New(component string, inner slog.Handler) *slog.Logger {
	if inner == nil {
		inner = slog.Default().Handler()
	}
	return slog.New(&Handler{component: component, h: inner, mu: &sync.Mutex{}})
}

// Component returns the dotted component tag for a package/sub-operation
// pair, e.g. Component("resolve", "fixup") -> "resolve.fixup".
func Component(parts ...string) string {
	return strings.Join(parts, ".")
}
