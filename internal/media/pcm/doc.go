// Package pcm decodes WAV audio into normalized mono samples and computes the
// short-term frame measurements the audio evidence providers threshold on:
// RMS level in dBFS and spectral energy inside a frequency band.
package pcm
