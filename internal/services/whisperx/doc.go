// Package whisperx runs WhisperX transcription through uvx and loads its JSON
// output.
//
// The keyword provider feeds it the analysis WAV extracted once per run and
// searches the returned Transcript; segment timings, when WhisperX reports
// them, let matches be anchored in time. Model, CUDA, and VAD settings are
// passed via Config.
package whisperx
