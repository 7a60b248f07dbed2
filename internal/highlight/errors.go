package highlight

import (
	"fmt"

	"github.com/rywkoo/highlight-clipper/internal/services"
)

// ValidationError reports malformed scheduler input. It names the offending
// field so callers can surface it without parsing the message.
type ValidationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

// Is lets errors.Is match the shared validation marker.
func (e *ValidationError) Is(target error) bool {
	return target == services.ErrValidation
}
