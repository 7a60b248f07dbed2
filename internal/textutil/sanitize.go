package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName makes name safe as a single path element. Separators and
// other characters that change meaning in a path become dashes, shell and
// Windows reserved punctuation is dropped, and control characters are removed.
func SanitizeFileName(name string) string {
	return strings.TrimSpace(strings.Map(fileNameRune, strings.TrimSpace(name)))
}

func fileNameRune(r rune) rune {
	switch r {
	case '/', '\\', ':', '*':
		return '-'
	case '?', '"', '<', '>', '|':
		return -1
	}
	if unicode.IsControl(r) {
		return -1
	}
	return r
}
