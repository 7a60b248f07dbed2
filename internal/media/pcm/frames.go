package pcm

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FrameSize converts a frame length in milliseconds to samples.
func (s Signal) FrameSize(frameMS int) int {
	n := s.SampleRate * frameMS / 1000
	if n < 1 {
		n = 1
	}
	return n
}

// Frames splits the signal into consecutive non-overlapping frames. A trailing
// partial frame is kept.
func (s Signal) Frames(frameMS int) [][]float64 {
	size := s.FrameSize(frameMS)
	if len(s.Samples) == 0 {
		return nil
	}
	out := make([][]float64, 0, (len(s.Samples)+size-1)/size)
	for start := 0; start < len(s.Samples); start += size {
		end := start + size
		if end > len(s.Samples) {
			end = len(s.Samples)
		}
		out = append(out, s.Samples[start:end])
	}
	return out
}

// RMS returns the root-mean-square amplitude of frame.
func RMS(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range frame {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// DBFS converts an RMS amplitude to decibels relative to full scale. A full
// scale square wave reads 0 dBFS.
func DBFS(rms float64) float64 {
	if rms <= 0 {
		return SilenceFloorDB
	}
	return math.Max(20*math.Log10(rms), SilenceFloorDB)
}

// Levels returns the dBFS level of every frame.
func (s Signal) Levels(frameMS int) []float64 {
	frames := s.Frames(frameMS)
	out := make([]float64, len(frames))
	for i, frame := range frames {
		out[i] = DBFS(RMS(frame))
	}
	return out
}

// BandEnergy returns, per frame, the mean spectral power between lowHz and
// highHz. Trailing partial frames are zero padded to the frame size so one
// FFT plan serves the whole signal.
func (s Signal) BandEnergy(frameMS int, lowHz, highHz float64) []float64 {
	size := s.FrameSize(frameMS)
	frames := s.Frames(frameMS)
	if len(frames) == 0 {
		return nil
	}

	fft := fourier.NewFFT(size)
	lowBin, highBin := bandBins(size, s.SampleRate, lowHz, highHz)
	padded := make([]float64, size)
	coeff := make([]complex128, size/2+1)
	out := make([]float64, len(frames))
	for i, frame := range frames {
		copy(padded, frame)
		for j := len(frame); j < size; j++ {
			padded[j] = 0
		}
		coeff = fft.Coefficients(coeff, padded)
		if highBin < lowBin {
			continue
		}
		sum := 0.0
		for k := lowBin; k <= highBin; k++ {
			mag := cmplx.Abs(coeff[k]) / float64(size)
			sum += mag * mag
		}
		out[i] = sum / float64(highBin-lowBin+1)
	}
	return out
}

// FrameStart returns the timestamp in seconds of frame index i.
func (s Signal) FrameStart(frameMS, i int) float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(i*s.FrameSize(frameMS)) / float64(s.SampleRate)
}

func bandBins(size, sampleRate int, lowHz, highHz float64) (int, int) {
	resolution := float64(sampleRate) / float64(size)
	nyquistBin := size / 2
	low := int(math.Ceil(lowHz / resolution))
	high := int(math.Floor(highHz / resolution))
	if low < 0 {
		low = 0
	}
	if high > nyquistBin {
		high = nyquistBin
	}
	return low, high
}
