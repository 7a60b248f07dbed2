package materialize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rywkoo/highlight-clipper/internal/config"
	"github.com/rywkoo/highlight-clipper/internal/highlight"
	"github.com/rywkoo/highlight-clipper/internal/logging"
	"github.com/rywkoo/highlight-clipper/internal/media/ffmpeg"
	"github.com/rywkoo/highlight-clipper/internal/textutil"
)

// Cutter encodes one span of a recording.
type Cutter interface {
	Cut(ctx context.Context, spec ffmpeg.CutSpec) error
}

// Source identifies the recording being cut.
type Source struct {
	// Recording names the clip subdirectory.
	Recording string
	Path      string
	// AudioOnly drops the video stream for recordings without one.
	AudioOnly bool
}

// Artifact is one produced clip.
type Artifact struct {
	Index  int
	Window highlight.ClipWindow
	// Path is absolute; Rel is slash separated and relative to the clips root.
	Path string
	Rel  string
	Size int64
}

// Materializer produces clip files. It is safe for concurrent use.
type Materializer struct {
	cutter     Cutter
	clipsDir   string
	videoCodec string
	audioCodec string
	lockWait   time.Duration
	logger     *slog.Logger
}

// New builds a Materializer from configuration. A nil cutter runs the
// configured ffmpeg binary.
func New(cfg *config.Config, cutter Cutter, logger *slog.Logger) *Materializer {
	if cutter == nil {
		cutter = ffmpeg.New(cfg.FFmpegBinary())
	}
	return &Materializer{
		cutter:     cutter,
		clipsDir:   cfg.Paths.ClipsDir,
		videoCodec: cfg.Materialize.VideoCodec,
		audioCodec: cfg.Materialize.AudioCodec,
		lockWait:   defaultLockWait,
		logger:     logging.NewComponentLogger(logger, "materialize"),
	}
}

// RecordingDir returns the clip directory for recording.
func (m *Materializer) RecordingDir(recording string) string {
	return filepath.Join(m.clipsDir, recordingDirName(recording))
}

// ClipPath returns the final location of clip index for recording.
func (m *Materializer) ClipPath(recording string, index int) string {
	return filepath.Join(m.RecordingDir(recording), fmt.Sprintf("clip_%d.mp4", index))
}

// Materialize cuts window out of src as clip number index.
func (m *Materializer) Materialize(ctx context.Context, src Source, window highlight.ClipWindow, index int) (Artifact, error) {
	fail := func(err error) (Artifact, error) {
		me := &Error{Index: index, Window: window, Err: err}
		var cmdErr *ffmpeg.CommandError
		if errors.As(err, &cmdErr) {
			me.Stderr = cmdErr.Stderr
		}
		return Artifact{}, me
	}

	if window.End <= window.Start {
		return fail(fmt.Errorf("empty window"))
	}
	dest := m.ClipPath(src.Recording, index)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fail(fmt.Errorf("create clip dir: %w", err))
	}
	part := partPath(dest)
	spec := ffmpeg.CutSpec{
		Source:     src.Path,
		Dest:       part,
		Start:      window.Start,
		Duration:   window.Duration(),
		VideoCodec: m.videoCodec,
		AudioCodec: m.audioCodec,
		AudioOnly:  src.AudioOnly,
	}
	if err := m.cutter.Cut(ctx, spec); err != nil {
		_ = os.Remove(part)
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(part)
		return fail(err)
	}
	info, err := os.Stat(part)
	if err != nil {
		return fail(fmt.Errorf("encoder produced no output: %w", err))
	}
	if info.Size() == 0 {
		_ = os.Remove(part)
		return fail(fmt.Errorf("encoder produced an empty clip"))
	}
	if err := os.Rename(part, dest); err != nil {
		_ = os.Remove(part)
		return fail(fmt.Errorf("publish clip: %w", err))
	}

	rel, err := filepath.Rel(m.clipsDir, dest)
	if err != nil {
		rel = filepath.Base(dest)
	}
	artifact := Artifact{
		Index:  index,
		Window: window,
		Path:   dest,
		Rel:    filepath.ToSlash(rel),
		Size:   info.Size(),
	}
	m.logger.Debug("clip written",
		logging.Int("index", index),
		logging.Window("window", window.Start, window.End),
		logging.String("path", dest),
	)
	return artifact, nil
}

// partPath hides in-progress encodes from directory listings of finished clips.
func partPath(dest string) string {
	return filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".part")
}

func recordingDirName(recording string) string {
	name := textutil.SanitizeFileName(recording)
	name = strings.Trim(name, ". ")
	if name == "" {
		return "recording"
	}
	return name
}
