// Package mediatype recognises recordings by their magic bytes.
package mediatype

import (
	"errors"
	"fmt"

	"github.com/h2non/filetype"
)

// ErrNotMedia is returned for files whose content is recognisably not audio or video.
var ErrNotMedia = errors.New("file is not an audio or video recording")

// Sniff checks the file header and returns the detected MIME type. Known
// non-media types are rejected; unrecognised content returns "" and is left
// for ffprobe to judge.
func Sniff(path string) (string, error) {
	kind, err := filetype.MatchFile(path)
	if err != nil {
		return "", fmt.Errorf("read header: %w", err)
	}
	if kind == filetype.Unknown {
		return "", nil
	}
	switch kind.MIME.Type {
	case "video", "audio":
		return kind.MIME.Value, nil
	default:
		return "", fmt.Errorf("%w: detected %s", ErrNotMedia, kind.MIME.Value)
	}
}

// Extension returns the canonical extension for a sniffed file, or "" when
// the content is not recognised.
func Extension(path string) string {
	kind, err := filetype.MatchFile(path)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.Extension
}
