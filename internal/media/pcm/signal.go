package pcm

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// SilenceFloorDB is reported for frames with no energy at all.
const SilenceFloorDB = -120.0

// ErrInvalidWAV is returned for files the WAV decoder rejects.
var ErrInvalidWAV = errors.New("not a valid WAV file")

// Signal is mono audio with samples normalized to [-1, 1].
type Signal struct {
	SampleRate int
	Samples    []float64
}

// Duration returns the signal length in seconds.
func (s Signal) Duration() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}

// Open decodes the WAV file at path.
func Open(path string) (Signal, error) {
	f, err := os.Open(path)
	if err != nil {
		return Signal{}, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a WAV stream, downmixing multi-channel audio to mono.
func Decode(r io.ReadSeeker) (Signal, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return Signal{}, ErrInvalidWAV
	}
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return Signal{}, fmt.Errorf("read pcm buffer: %w", err)
	}
	if buf == nil || buf.Format == nil {
		return Signal{}, ErrInvalidWAV
	}
	bitDepth := int(decoder.BitDepth)
	if bitDepth <= 0 {
		bitDepth = buf.SourceBitDepth
	}
	return fromIntBuffer(buf, bitDepth)
}

func fromIntBuffer(buf *audio.IntBuffer, bitDepth int) (Signal, error) {
	channels := buf.Format.NumChannels
	if channels <= 0 {
		return Signal{}, fmt.Errorf("invalid channel count %d", channels)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return Signal{}, fmt.Errorf("unsupported bit depth %d", bitDepth)
	}
	// 8-bit WAV is unsigned; wider depths are signed.
	scale := math.Ldexp(1, bitDepth-1)
	offset := 0.0
	if bitDepth == 8 {
		offset = scale
	}

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += (float64(buf.Data[i*channels+c]) - offset) / scale
		}
		samples[i] = sum / float64(channels)
	}
	return Signal{SampleRate: buf.Format.SampleRate, Samples: samples}, nil
}

// Write encodes s as 16-bit mono PCM WAV.
func Write(w io.WriteSeeker, s Signal) error {
	encoder := wav.NewEncoder(w, s.SampleRate, 16, 1, 1)
	data := make([]int, len(s.Samples))
	for i, sample := range s.Samples {
		data[i] = int(math.Round(math.Max(-1, math.Min(1, sample)) * 32767))
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: s.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(buf); err != nil {
		return fmt.Errorf("write pcm: %w", err)
	}
	return encoder.Close()
}
