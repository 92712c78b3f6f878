package editspec

import (
	"fmt"

	"pixal/internal/services"
)

// SchemaError reports a structurally valid JSON document whose shape does not
// match the clip model.
type SchemaError struct {
	Index int
	Field string
	Msg   string
}

func (e *SchemaError) Error() string {
	switch {
	case e.Index > 0 && e.Field != "":
		return fmt.Sprintf("clip %d: %s: %s", e.Index, e.Field, e.Msg)
	case e.Index > 0:
		return fmt.Sprintf("clip %d: %s", e.Index, e.Msg)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	default:
		return e.Msg
	}
}

// Unwrap lets errors.Is match services.ErrSchema.
func (e *SchemaError) Unwrap() error { return services.ErrSchema }

func schemaErr(field, format string, args ...any) *SchemaError {
	return &SchemaError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

func withIndex(err error, index int) error {
	if se, ok := err.(*SchemaError); ok {
		copied := *se
		copied.Index = index
		return &copied
	}
	return err
}
