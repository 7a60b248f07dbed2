package materialize

import (
	"fmt"

	"github.com/rywkoo/highlight-clipper/internal/highlight"
	"github.com/rywkoo/highlight-clipper/internal/services"
)

// Error reports a clip that could not be produced. Stderr holds the tail of
// ffmpeg's diagnostic output when the encoder ran.
type Error struct {
	Index  int
	Window highlight.ClipWindow
	Stderr string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("materialize clip %d %s: %v", e.Index, e.Window, e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches services.ErrMaterialization.
func (e *Error) Is(target error) bool { return target == services.ErrMaterialization }
