package services_test

import (
	"errors"
	"strings"
	"testing"

	"pixal/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "render", "encode clip_001", "ffmpeg exited", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"render", "encode clip_001", "ffmpeg exited"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrUnknownStage, "", "", "", nil)
	if err.Error() != "unknown stage: pipeline failure" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestKind(t *testing.T) {
	cases := map[error]string{
		nil: "",
		services.Wrap(services.ErrMissingInput, "detect", "load", "", nil):  "missing_input",
		services.Wrap(services.ErrSchema, "timeline", "load", "", nil):       "schema_error",
		services.Wrap(services.ErrTimeout, "render", "encode", "", nil):      "timeout",
		services.Wrap(services.ErrWorkspaceBusy, "", "lock", "", nil):        "workspace_busy",
		errors.New("plain"): "error",
	}
	for err, want := range cases {
		if got := services.Kind(err); got != want {
			t.Fatalf("Kind(%v) = %q, want %q", err, got, want)
		}
	}
}
