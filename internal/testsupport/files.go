package testsupport

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rywkoo/highlight-clipper/internal/media/pcm"
)

// WriteFile writes size bytes of filler to path, creating parents. A size
// below one writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size < 1 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, int(size)), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// Tone is a span of sine wave (or silence when Amplitude is zero).
type Tone struct {
	Seconds   float64
	Freq      float64
	Amplitude float64
}

// WriteWAV renders tones back to back into a 16 kHz mono WAV at path.
func WriteWAV(t testing.TB, path string, tones ...Tone) {
	t.Helper()

	const rate = 16000
	var samples []float64
	for _, tone := range tones {
		n := int(math.Round(tone.Seconds * rate))
		for i := 0; i < n; i++ {
			samples = append(samples, tone.Amplitude*math.Sin(2*math.Pi*tone.Freq*float64(i)/rate))
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if err := pcm.Write(f, pcm.Signal{SampleRate: rate, Samples: samples}); err != nil {
		f.Close()
		t.Fatalf("write wav %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}
