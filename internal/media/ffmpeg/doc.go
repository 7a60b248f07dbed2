// Package ffmpeg builds and runs the ffmpeg invocations the highlighter
// needs: mono 16 kHz audio extraction for analysis, still-frame sampling for
// emotion classification, and re-encoded clip cuts.
//
// Runner shells out to the configured binary; tests swap the executor with
// WithCommandRunner and assert on the generated arguments.
package ffmpeg
