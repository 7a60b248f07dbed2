package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBinary is used when no ffmpeg path is configured.
const DefaultBinary = "ffmpeg"

// CommandFunc executes name with args and returns captured stderr.
type CommandFunc func(ctx context.Context, name string, args ...string) (stderr []byte, err error)

// CommandError carries ffmpeg's diagnostic output for a failed invocation.
type CommandError struct {
	Binary string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: %v", e.Binary, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Binary, e.Err, e.Stderr)
}

func (e *CommandError) Unwrap() error { return e.Err }

// Runner invokes ffmpeg.
type Runner struct {
	binary string
	exec   CommandFunc
}

// New returns a Runner for binary, defaulting to ffmpeg on PATH.
func New(binary string) *Runner {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = DefaultBinary
	}
	return &Runner{binary: binary, exec: runCommand}
}

// WithCommandRunner replaces process execution (for testing).
func (r *Runner) WithCommandRunner(fn CommandFunc) *Runner {
	if fn != nil {
		r.exec = fn
	}
	return r
}

// Binary returns the configured executable.
func (r *Runner) Binary() string { return r.binary }

// Run executes ffmpeg with args. Failures return *CommandError.
func (r *Runner) Run(ctx context.Context, args ...string) error {
	stderr, err := r.exec(ctx, r.binary, args...)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	return &CommandError{Binary: r.binary, Stderr: lastLines(string(stderr), 8), Err: err}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}

// lastLines keeps the tail of noisy ffmpeg output, which is where the cause is.
func lastLines(text string, n int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
