package log

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler fans records out to a terminal handler and a file handler,
// each filtering by its own level.
type teeHandler struct {
	term slog.Handler
	file slog.Handler
}

func (h *teeHandler) Enabled(ctx context.Context, lvl slog.Level) bool {
	return h.term.Enabled(ctx, lvl) || h.file.Enabled(ctx, lvl)
}

func (h *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	if h.term.Enabled(ctx, r.Level) {
		errs = append(errs, h.term.Handle(ctx, r.Clone()))
	}
	if h.file.Enabled(ctx, r.Level) {
		errs = append(errs, h.file.Handle(ctx, r.Clone()))
	}
	return errors.Join(errs...)
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{term: h.term.WithAttrs(attrs), file: h.file.WithAttrs(attrs)}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{term: h.term.WithGroup(name), file: h.file.WithGroup(name)}
}
