package pcm

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func sine(rate int, seconds, freq, amp float64) []float64 {
	n := int(float64(rate) * seconds)
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func TestWriteOpenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	in := Signal{SampleRate: 16000, Samples: sine(16000, 0.5, 440, 0.5)}
	if err := Write(f, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	out, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if out.SampleRate != 16000 {
		t.Fatalf("unexpected sample rate %d", out.SampleRate)
	}
	if len(out.Samples) != len(in.Samples) {
		t.Fatalf("expected %d samples, got %d", len(in.Samples), len(out.Samples))
	}
	for i := 0; i < len(in.Samples); i += 997 {
		if math.Abs(out.Samples[i]-in.Samples[i]) > 1e-3 {
			t.Fatalf("sample %d drifted: %v vs %v", i, out.Samples[i], in.Samples[i])
		}
	}
	if d := out.Duration(); math.Abs(d-0.5) > 1e-9 {
		t.Fatalf("unexpected duration %v", d)
	}
}

func TestOpenRejectsNonWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.wav")
	if err := os.WriteFile(path, []byte("definitely not riff data"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLevelsTrackAmplitude(t *testing.T) {
	samples := append(make([]float64, 1600), sine(16000, 0.1, 1000, 1)...)
	sig := Signal{SampleRate: 16000, Samples: samples}
	levels := sig.Levels(10)
	if len(levels) != 20 {
		t.Fatalf("expected 20 frames, got %d", len(levels))
	}
	if levels[0] != SilenceFloorDB {
		t.Fatalf("expected silent frame at floor, got %v", levels[0])
	}
	// Full-scale sine RMS is 1/sqrt(2), about -3 dBFS.
	if got := levels[15]; math.Abs(got-(-3.01)) > 0.1 {
		t.Fatalf("expected about -3 dBFS, got %v", got)
	}
}

func TestFramesKeepsPartialTail(t *testing.T) {
	sig := Signal{SampleRate: 1000, Samples: make([]float64, 25)}
	frames := sig.Frames(10)
	if len(frames) != 3 || len(frames[2]) != 5 {
		t.Fatalf("unexpected framing: %d frames, tail %d", len(frames), len(frames[len(frames)-1]))
	}
	if sig.FrameStart(10, 2) != 0.02 {
		t.Fatalf("unexpected frame start %v", sig.FrameStart(10, 2))
	}
}

func TestBandEnergySeparatesFrequencies(t *testing.T) {
	const rate = 16000
	inBand := Signal{SampleRate: rate, Samples: sine(rate, 0.2, 1000, 0.5)}
	outOfBand := Signal{SampleRate: rate, Samples: sine(rate, 0.2, 6000, 0.5)}

	in := inBand.BandEnergy(50, 300, 3000)
	out := outOfBand.BandEnergy(50, 300, 3000)
	if len(in) != 4 || len(out) != 4 {
		t.Fatalf("expected 4 frames, got %d and %d", len(in), len(out))
	}
	for i := range in {
		if in[i] <= out[i]*100 {
			t.Fatalf("frame %d: in-band energy %v not dominant over %v", i, in[i], out[i])
		}
	}
}
