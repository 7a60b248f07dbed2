package history

import "time"

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning     Status = "running"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusInterrupted Status = "interrupted"
)

// Run is one processing attempt of a recording.
type Run struct {
	ID         string
	Recording  string
	SourcePath string
	Preset     string
	Status     Status
	Duration   float64
	Error      string
	StartedAt  time.Time
	FinishedAt *time.Time

	// Counts are filled by List; Get loads the full rows instead.
	WindowCount  int
	ClipCount    int
	WarningCount int
}

// Window is a scheduled window and, when materialized, its clip.
type Window struct {
	Index    int
	Start    float64
	End      float64
	Trigger  float64
	Kinds    string
	ClipPath string
	ClipRel  string
}

// Keyword is a keyword annotation reported by a run.
type Keyword struct {
	Keyword   string
	Excerpt   string
	Timestamp float64
	Whole     bool
}

// Warning is a degraded provider outcome.
type Warning struct {
	Provider string
	Message  string
}

// Outcome is everything a finished run writes to the ledger.
type Outcome struct {
	Status   Status
	Duration float64
	Error    string
	Windows  []Window
	Keywords []Keyword
	Warnings []Warning
}

// Detail is a run with its child rows.
type Detail struct {
	Run
	Windows  []Window
	Keywords []Keyword
	Warnings []Warning
}
