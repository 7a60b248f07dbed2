package providers

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rywkoo/highlight-clipper/internal/highlight"
	"github.com/rywkoo/highlight-clipper/internal/services/whisperx"
)

// Transcriber produces a transcript for an audio file.
type Transcriber interface {
	Transcribe(ctx context.Context, source, outputDir string) (whisperx.Transcript, error)
}

// Keyword searches one full transcript for configured keywords and emits one
// event per keyword found. Matches are case-insensitive and whole-word.
type Keyword struct {
	Transcriber  Transcriber
	Keywords     []string
	ExcerptChars int
}

func (Keyword) Kind() highlight.Kind { return highlight.KindKeyword }

func (k Keyword) Detect(ctx context.Context, media Media) ([]highlight.SignalEvent, error) {
	if len(k.Keywords) == 0 {
		return nil, nil
	}
	if media.AudioPath == "" {
		return nil, ErrNoAudio
	}
	if k.Transcriber == nil {
		return nil, fmt.Errorf("keyword: provider not configured")
	}
	transcript, err := k.Transcriber.Transcribe(ctx, media.AudioPath, filepath.Join(media.WorkDir, "transcript"))
	if err != nil {
		return nil, fmt.Errorf("keyword: %w", err)
	}
	return MatchKeywords(transcript, k.Keywords, k.ExcerptChars), nil
}

// MatchKeywords finds each keyword in transcript. With segment timings the
// event is anchored at the first matching segment (or word); without them
// the event is marked Whole.
func MatchKeywords(transcript whisperx.Transcript, keywords []string, excerptChars int) []highlight.SignalEvent {
	text := transcript.Text()
	if text == "" {
		return nil
	}
	timed := transcript.HasTimings()

	var events []highlight.SignalEvent
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}
		pattern := keywordPattern(keyword)
		loc := pattern.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		ev := highlight.SignalEvent{
			Kind: highlight.KindKeyword,
			Annotation: &highlight.Annotation{
				Keyword: keyword,
				Excerpt: excerpt(text, loc[2], loc[3], excerptChars),
			},
		}
		if ts, ok := anchor(transcript, pattern, keyword); timed && ok {
			ev.Timestamp = ts
		} else {
			ev.Whole = true
		}
		events = append(events, ev)
	}
	return events
}

func keywordPattern(keyword string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\pL\pN_])(` + regexp.QuoteMeta(keyword) + `)(?:$|[^\pL\pN_])`)
}

// anchor returns the start of the first segment containing keyword, refined
// to the word start when WhisperX reported word timings.
func anchor(transcript whisperx.Transcript, pattern *regexp.Regexp, keyword string) (float64, bool) {
	first := strings.Fields(strings.ToLower(keyword))
	for _, seg := range transcript.Segments {
		if seg.End <= seg.Start || !pattern.MatchString(seg.Text) {
			continue
		}
		if len(first) > 0 {
			for _, w := range seg.Words {
				word := strings.ToLower(strings.Trim(w.Word, ".,!?;:\"'()[]"))
				if word == first[0] && w.End > w.Start {
					return w.Start, true
				}
			}
		}
		return seg.Start, true
	}
	return 0, false
}

// excerpt returns up to n characters of context on each side of [start, end).
func excerpt(text string, start, end, n int) string {
	if n <= 0 {
		return strings.TrimSpace(text[start:end])
	}
	from := start
	for i := 0; i < n && from > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end
	for i := 0; i < n && to < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}
	out := strings.TrimSpace(text[from:to])
	if from > 0 {
		out = "..." + out
	}
	if to < len(text) {
		out += "..."
	}
	return out
}
