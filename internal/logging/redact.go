package logging

import (
	"context"
	"log/slog"
	"strings"
)

const redactedPlaceholder = "[redacted]"

type redactor struct {
	replacer *strings.Replacer
}

func newRedactor(values []string) *redactor {
	pairs := make([]string, 0, len(values)*2)
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		pairs = append(pairs, value, redactedPlaceholder)
	}
	if len(pairs) == 0 {
		return nil
	}
	return &redactor{replacer: strings.NewReplacer(pairs...)}
}

func (r *redactor) clean(s string) string {
	return r.replacer.Replace(s)
}

func (r *redactor) cleanValue(v slog.Value) slog.Value {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.StringValue(r.clean(v.String()))
	case slog.KindGroup:
		attrs := v.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = r.cleanAttr(attr)
		}
		return slog.GroupValue(out...)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return slog.StringValue(r.clean(err.Error()))
		}
		return v
	default:
		return v
	}
}

func (r *redactor) cleanAttr(attr slog.Attr) slog.Attr {
	attr.Value = r.cleanValue(attr.Value)
	return attr
}

// redactingHandler masks registered secret values before records reach any sink.
type redactingHandler struct {
	inner    slog.Handler
	redactor *redactor
}

func (h redactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h redactingHandler) Handle(ctx context.Context, record slog.Record) error {
	clean := slog.NewRecord(record.Time, record.Level, h.redactor.clean(record.Message), record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		clean.AddAttrs(h.redactor.cleanAttr(attr))
		return true
	})
	return h.inner.Handle(ctx, clean)
}

func (h redactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cleaned := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		cleaned[i] = h.redactor.cleanAttr(attr)
	}
	return redactingHandler{inner: h.inner.WithAttrs(cleaned), redactor: h.redactor}
}

func (h redactingHandler) WithGroup(name string) slog.Handler {
	return redactingHandler{inner: h.inner.WithGroup(name), redactor: h.redactor}
}
