package pipeline

import (
	"context"
	"os"

	"github.com/rywkoo/highlight-clipper/internal/media/ffprobe"
	"github.com/rywkoo/highlight-clipper/internal/media/mediatype"
	"github.com/rywkoo/highlight-clipper/internal/services"
)

// Prober inspects a media file's streams.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// FFprobe is the Prober backed by the ffprobe binary.
type FFprobe struct {
	Binary string
}

func (p FFprobe) Inspect(ctx context.Context, path string) (ffprobe.Result, error) {
	return ffprobe.Inspect(ctx, p.Binary, path)
}

// MediaInfo is what the orchestrator needs to know about a recording.
type MediaInfo struct {
	Duration float64
	HasVideo bool
	HasAudio bool
	// MIME is the sniffed container type, empty when unrecognized.
	MIME string
}

func (o *Orchestrator) probe(ctx context.Context, path string) (MediaInfo, error) {
	fail := func(msg string, err error) (MediaInfo, error) {
		return MediaInfo{}, services.Wrap(services.ErrPipeline, "probe", path, msg, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fail("cannot read recording", err)
	}
	if info.IsDir() || info.Size() == 0 {
		return fail("recording is empty or a directory", nil)
	}

	mime, err := mediatype.Sniff(path)
	if err != nil {
		return fail("unsupported content", err)
	}

	result, err := o.prober.Inspect(ctx, path)
	if err != nil {
		return fail("ffprobe failed", err)
	}
	if err := result.Validate(); err != nil {
		return fail("undecodable media", err)
	}
	return MediaInfo{
		Duration: result.DurationSeconds(),
		HasVideo: result.HasVideo(),
		HasAudio: result.HasAudio(),
		MIME:     mime,
	}, nil
}
