package services_test

import (
	"errors"
	"fmt"
	"testing"

	"voxsmith/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrAPI, "synthesize", "post", "status 402", base)
	if !errors.Is(err, services.ErrAPI) {
		t.Fatalf("expected ErrAPI marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatal("expected wrapped cause to survive")
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient default, got %v", err)
	}
}

func TestKindClassification(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.ErrValidation, "validation"},
		{fmt.Errorf("wrapped: %w", services.ErrProcess), "process"},
		{services.ErrAPI, "api"},
		{errors.New("other"), "unknown"},
	}
	for _, tc := range cases {
		if got := services.Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestIsFatal(t *testing.T) {
	if !services.IsFatal(services.ErrFatalHost) {
		t.Fatal("ErrFatalHost should be fatal")
	}
	if services.IsFatal(services.ErrAPI) {
		t.Fatal("ErrAPI should not be fatal")
	}
}
