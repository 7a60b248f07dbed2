package services_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/rywkoo/highlight-clipper/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "materialize", "ffmpeg", "cut failed", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"materialize", "ffmpeg", "cut failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutMarkerDefaultsToExternalTool(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{services.Wrap(services.ErrProviderFailure, "providers", "laughter", "decode", nil), false},
		{services.Wrap(services.ErrMaterialization, "materialize", "clip_3", "", nil), false},
		{services.Wrap(services.ErrPipeline, "probe", "", "unreadable", nil), true},
		{services.Wrap(services.ErrValidation, "schedule", "", "pre_pad", nil), true},
	}
	for _, tc := range cases {
		if got := services.IsFatal(tc.err); got != tc.want {
			t.Fatalf("IsFatal(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestClassify(t *testing.T) {
	if got := services.Classify(services.Wrap(services.ErrProviderFailure, "", "", "x", nil)); got != "provider_failure" {
		t.Fatalf("unexpected class %q", got)
	}
	if got := services.Classify(errors.New("plain")); got != "unknown" {
		t.Fatalf("unexpected class %q", got)
	}
	if got := services.Classify(nil); got != "" {
		t.Fatalf("expected empty class for nil, got %q", got)
	}
}
