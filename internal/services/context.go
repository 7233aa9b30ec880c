package services

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	slideKey contextKey = "slide"
	stageKey contextKey = "stage"
)

// WithRunID annotates context with the run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSlide annotates context with the 1-based slide ordinal.
func WithSlide(ctx context.Context, number int) context.Context {
	if number <= 0 {
		return ctx
	}
	return context.WithValue(ctx, slideKey, number)
}

// SlideFromContext returns the slide ordinal if present.
func SlideFromContext(ctx context.Context) (int, bool) {
	switch v := ctx.Value(slideKey).(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

// WithStage annotates context with the per-slide stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
