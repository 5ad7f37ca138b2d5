package logging

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Notifier delivers operator alerts, e.g. a message to an admin chat.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// AlertHandler forwards records at or above a threshold to a Notifier,
// and passes every record on to the wrapped handler.
type AlertHandler struct {
	next      slog.Handler
	notifier  Notifier
	threshold slog.Level
	attrs     []slog.Attr
}

// NewAlertHandler wraps next. A nil notifier makes it a pass-through.
func NewAlertHandler(next slog.Handler, notifier Notifier, threshold slog.Level) *AlertHandler {
	return &AlertHandler{next: next, notifier: notifier, threshold: threshold}
}

func (h *AlertHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level) || (h.notifier != nil && level >= h.threshold)
}

func (h *AlertHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.notifier != nil && r.Level >= h.threshold {
		// Alert failures must not recurse into the logger.
		_ = h.notifier.Notify(ctx, h.format(r))
	}
	if !h.next.Enabled(ctx, r.Level) {
		return nil
	}
	return h.next.Handle(ctx, r)
}

func (h *AlertHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.next = h.next.WithAttrs(attrs)
	clone.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &clone
}

// WithGroup is passed through; alert text stays flat.
func (h *AlertHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.next = h.next.WithGroup(name)
	return &clone
}

func (h *AlertHandler) format(r slog.Record) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", r.Level, r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		fmt.Fprintf(&sb, " %s=%v", a.Key, a.Value)
		return true
	})
	return sb.String()
}
