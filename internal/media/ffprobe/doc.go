// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect executes ffprobe and returns the parsed Result; helper methods
// summarize what the highlighter needs before analysis starts: whether the
// container carries decodable audio and video, its duration, and the video
// frame rate used when sampling frames for emotion classification.
package ffprobe
