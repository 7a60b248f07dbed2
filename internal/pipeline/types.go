package pipeline

import (
	"time"

	"github.com/rywkoo/highlight-clipper/internal/highlight"
	"github.com/rywkoo/highlight-clipper/internal/materialize"
)

// Recording is one input to process.
type Recording struct {
	// ID is optional; a run id is generated when empty.
	ID   string
	Name string
	Path string
}

// Clip is a produced clip file.
type Clip = materialize.Artifact

// KeywordAnnotation reports a keyword found in the transcript, whether or not
// a window was scheduled around it.
type KeywordAnnotation struct {
	Keyword   string  `json:"keyword"`
	Excerpt   string  `json:"excerpt,omitempty"`
	Timestamp float64 `json:"timestamp"`
	Whole     bool    `json:"whole,omitempty"`
}

// Warning is a degraded outcome that did not fail the run.
type Warning struct {
	// Source is the provider name, or a stage such as "materialize".
	Source  string `json:"source"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ProviderReport summarizes one provider's contribution.
type ProviderReport struct {
	Kind    highlight.Kind
	Events  int
	Elapsed time.Duration
	Err     error
}

// Result is the outcome of one run.
type Result struct {
	RunID     string
	Recording Recording
	Preset    string
	Duration  float64
	HasVideo  bool
	Timeline  highlight.Timeline
	Windows   []highlight.ClipWindow
	Clips     []Clip
	Keywords  []KeywordAnnotation
	Warnings  []Warning
	Providers []ProviderReport
}
