package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingInput      = errors.New("missing input")
	ErrMalformedArtifact = errors.New("malformed artifact")
	ErrSchema            = errors.New("schema error")
	ErrExternalTool      = errors.New("external tool failure")
	ErrUnknownStage      = errors.New("unknown stage")
	ErrUnknownTarget     = errors.New("unknown target")
	ErrValidationFailed  = errors.New("validation failed")
	ErrConfiguration     = errors.New("configuration error")
	ErrNotImplemented    = errors.New("not implemented")
	ErrWorkspaceBusy     = errors.New("workspace busy")
	ErrTimeout           = errors.New("timeout")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind maps an error to a short snake_case label for logs and the run ledger.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingInput):
		return "missing_input"
	case errors.Is(err, ErrMalformedArtifact):
		return "malformed_artifact"
	case errors.Is(err, ErrSchema):
		return "schema_error"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrExternalTool):
		return "external_tool_failure"
	case errors.Is(err, ErrUnknownStage):
		return "unknown_stage"
	case errors.Is(err, ErrUnknownTarget):
		return "unknown_target"
	case errors.Is(err, ErrValidationFailed):
		return "validation_failed"
	case errors.Is(err, ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, ErrNotImplemented):
		return "not_implemented"
	case errors.Is(err, ErrWorkspaceBusy):
		return "workspace_busy"
	default:
		return "error"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
