package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Analysis audio format.
const (
	AnalysisSampleRate = 16000
	AnalysisChannels   = 1
)

// ExtractAudio writes the first audio stream of source to dest as mono 16 kHz
// 16-bit PCM WAV.
func (r *Runner) ExtractAudio(ctx context.Context, source, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("extract audio: ensure dir: %w", err)
	}
	return r.Run(ctx, ExtractAudioArgs(source, dest)...)
}

// ExtractAudioArgs builds the ffmpeg arguments used by ExtractAudio.
func ExtractAudioArgs(source, dest string) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-ac", strconv.Itoa(AnalysisChannels),
		"-ar", strconv.Itoa(AnalysisSampleRate),
		"-c:a", "pcm_s16le",
		dest,
	}
}

// Frame is one sampled still image.
type Frame struct {
	Path      string
	Timestamp float64
}

const framePattern = "frame_%06d.jpg"

// SampleFrames extracts JPEG stills at fps into dir and returns them in time
// order. Frame i (zero based) is stamped at i/fps seconds.
func (r *Runner) SampleFrames(ctx context.Context, source, dir string, fps float64) ([]Frame, error) {
	if fps <= 0 {
		return nil, errors.New("sample frames: fps must be positive")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sample frames: ensure dir: %w", err)
	}
	if err := r.Run(ctx, SampleFramesArgs(source, dir, fps)...); err != nil {
		return nil, err
	}
	return CollectFrames(dir, fps)
}

// SampleFramesArgs builds the ffmpeg arguments used by SampleFrames.
func SampleFramesArgs(source, dir string, fps float64) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-an",
		"-sn",
		"-vf", "fps=" + formatSeconds(fps),
		"-q:v", "3",
		"-start_number", "0",
		filepath.Join(dir, framePattern),
	}
}

// CollectFrames lists the frames SampleFrames wrote into dir.
func CollectFrames(dir string, fps float64) ([]Frame, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "frame_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("collect frames: %w", err)
	}
	sort.Strings(matches)
	frames := make([]Frame, 0, len(matches))
	for _, path := range matches {
		digits := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "frame_"), ".jpg")
		index, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		frames = append(frames, Frame{Path: path, Timestamp: float64(index) / fps})
	}
	return frames, nil
}

// CutSpec describes one clip extraction.
type CutSpec struct {
	Source     string
	Dest       string
	Start      float64
	Duration   float64
	VideoCodec string
	AudioCodec string
	AudioOnly  bool
}

// Cut re-encodes [Start, Start+Duration) of Source into Dest.
func (r *Runner) Cut(ctx context.Context, spec CutSpec) error {
	if spec.Duration <= 0 {
		return fmt.Errorf("cut: duration must be positive, got %v", spec.Duration)
	}
	return r.Run(ctx, CutArgs(spec)...)
}

// CutArgs builds the ffmpeg arguments used by Cut. Input seeking keeps long
// recordings fast; re-encoding makes the cut frame accurate.
func CutArgs(spec CutSpec) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", formatSeconds(spec.Start),
		"-i", spec.Source,
		"-t", formatSeconds(spec.Duration),
	}
	if spec.AudioOnly {
		args = append(args, "-vn")
	} else {
		args = append(args, "-c:v", spec.VideoCodec)
	}
	args = append(args,
		"-c:a", spec.AudioCodec,
		"-sn",
		"-dn",
		"-movflags", "+faststart",
		"-f", "mp4",
		spec.Dest,
	)
	return args
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
