package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/rywkoo/highlight-clipper/internal/highlight"
	"github.com/rywkoo/highlight-clipper/internal/services/whisperx"
)

type fakeTranscriber struct {
	transcript whisperx.Transcript
	err        error
	calls      int
}

func (f *fakeTranscriber) Transcribe(context.Context, string, string) (whisperx.Transcript, error) {
	f.calls++
	return f.transcript, f.err
}

func timedTranscript() whisperx.Transcript {
	return whisperx.Transcript{Segments: []whisperx.Segment{
		{Text: "Welcome back everyone.", Start: 0, End: 4},
		{Text: "That was an incredible goal!", Start: 12, End: 16, Words: []whisperx.Word{
			{Word: "That", Start: 12, End: 12.3},
			{Word: "was", Start: 12.3, End: 12.5},
			{Word: "an", Start: 12.5, End: 12.6},
			{Word: "incredible", Start: 12.6, End: 13.2},
			{Word: "goal!", Start: 13.2, End: 13.8},
		}},
		{Text: "Another goal later.", Start: 30, End: 33},
	}}
}

func TestMatchKeywordsAnchorsOnFirstOccurrence(t *testing.T) {
	events := MatchKeywords(timedTranscript(), []string{"GOAL", "welcome"}, 10)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %+v", events)
	}
	goal := events[0]
	if goal.Kind != highlight.KindKeyword || goal.Whole {
		t.Fatalf("unexpected goal event %+v", goal)
	}
	if goal.Timestamp != 13.2 {
		t.Fatalf("expected word-level anchor 13.2, got %v", goal.Timestamp)
	}
	if goal.Annotation.Keyword != "GOAL" {
		t.Fatalf("unexpected keyword %q", goal.Annotation.Keyword)
	}
	if goal.Annotation.Excerpt != "...ncredible goal! Another..." {
		t.Fatalf("unexpected excerpt %q", goal.Annotation.Excerpt)
	}
	if events[1].Timestamp != 0 {
		t.Fatalf("expected welcome at 0, got %v", events[1].Timestamp)
	}
}

func TestMatchKeywordsIsWholeWord(t *testing.T) {
	events := MatchKeywords(timedTranscript(), []string{"go", "credible"}, 10)
	if len(events) != 0 {
		t.Fatalf("expected no partial-word matches, got %+v", events)
	}
}

func TestMatchKeywordsUntimedTranscriptIsWhole(t *testing.T) {
	transcript := whisperx.Transcript{Segments: []whisperx.Segment{{Text: "what a save"}}}
	events := MatchKeywords(transcript, []string{"save"}, 0)
	if len(events) != 1 || !events[0].Whole {
		t.Fatalf("expected one whole-recording event, got %+v", events)
	}
	if events[0].Annotation.Excerpt != "save" {
		t.Fatalf("unexpected excerpt %q", events[0].Annotation.Excerpt)
	}
}

func TestMatchKeywordsSegmentAnchorWithoutWords(t *testing.T) {
	events := MatchKeywords(timedTranscript(), []string{"another goal"}, 0)
	if len(events) != 1 || events[0].Timestamp != 30 {
		t.Fatalf("expected segment anchor 30, got %+v", events)
	}
}

func TestKeywordDetectWithoutKeywordsSkipsTranscription(t *testing.T) {
	tr := &fakeTranscriber{}
	events, err := Keyword{Transcriber: tr}.Detect(context.Background(), Media{AudioPath: "a.wav"})
	if err != nil || events != nil {
		t.Fatalf("expected no events and no error, got %+v %v", events, err)
	}
	if tr.calls != 0 {
		t.Fatal("transcriber should not run without keywords")
	}
}

func TestKeywordDetectPropagatesTranscriptionFailure(t *testing.T) {
	tr := &fakeTranscriber{err: whisperx.ErrNoSpeech}
	_, err := Keyword{Transcriber: tr, Keywords: []string{"goal"}}.Detect(context.Background(), Media{AudioPath: "a.wav", WorkDir: t.TempDir()})
	if !errors.Is(err, whisperx.ErrNoSpeech) {
		t.Fatalf("expected ErrNoSpeech, got %v", err)
	}
}

func TestKeywordDetectMatchesTranscript(t *testing.T) {
	tr := &fakeTranscriber{transcript: timedTranscript()}
	events, err := Keyword{Transcriber: tr, Keywords: []string{"goal"}, ExcerptChars: 5}.Detect(context.Background(), Media{AudioPath: "a.wav", WorkDir: t.TempDir()})
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(events) != 1 || events[0].Timestamp != 13.2 {
		t.Fatalf("unexpected events %+v", events)
	}
}
