package utils

import (
	"context"
	"errors"
	"log/slog"
)

// FanoutHandler duplicates each record to every target handler, so the same
// log line reaches both the terminal and the log file. A record is cloned per
// target; slog.Record is not safe to share once a handler starts consuming it.
type FanoutHandler struct {
	targets []slog.Handler
}

var _ slog.Handler = (*FanoutHandler)(nil)

func NewFanoutHandler(targets ...slog.Handler) *FanoutHandler {
	return &FanoutHandler{targets: targets}
}

// Enabled reports true when any target would accept the level.
func (h *FanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, t := range h.targets {
		if t.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle delivers the record to every enabled target. One failing target does
// not stop delivery to the rest; the errors are joined.
func (h *FanoutHandler) Handle(ctx context.Context, rec slog.Record) error {
	var errs []error
	for _, t := range h.targets {
		if !t.Enabled(ctx, rec.Level) {
			continue
		}
		if err := t.Handle(ctx, rec.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *FanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.apply(func(t slog.Handler) slog.Handler { return t.WithAttrs(attrs) })
}

func (h *FanoutHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.apply(func(t slog.Handler) slog.Handler { return t.WithGroup(name) })
}

func (h *FanoutHandler) apply(fn func(slog.Handler) slog.Handler) slog.Handler {
	targets := make([]slog.Handler, len(h.targets))
	for i, t := range h.targets {
		targets[i] = fn(t)
	}
	return NewFanoutHandler(targets...)
}
