package highlight

import (
	"fmt"
	"strings"
)

// Kind identifies the evidence category a SignalEvent was produced by.
type Kind uint8

const (
	KindLoudness Kind = iota + 1
	KindLaughter
	KindEmotion
	KindKeyword
)

// AllKinds lists every evidence kind in display order.
var AllKinds = []Kind{KindLoudness, KindLaughter, KindEmotion, KindKeyword}

func (k Kind) String() string {
	switch k {
	case KindLoudness:
		return "loudness"
	case KindLaughter:
		return "laughter"
	case KindEmotion:
		return "emotion"
	case KindKeyword:
		return "keyword"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind resolves a kind name as used in config files and CLI flags.
func ParseKind(value string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "loudness", "loud":
		return KindLoudness, nil
	case "laughter", "laugh":
		return KindLaughter, nil
	case "emotion":
		return KindEmotion, nil
	case "keyword", "keywords":
		return KindKeyword, nil
	default:
		return 0, fmt.Errorf("unknown evidence kind %q", value)
	}
}

// KindSet is a small bit set of evidence kinds.
type KindSet uint8

func (k Kind) bit() KindSet {
	if k == 0 || k > KindKeyword {
		return 0
	}
	return 1 << (k - 1)
}

// With returns the set plus kind.
func (s KindSet) With(kind Kind) KindSet { return s | kind.bit() }

// Union returns the union of both sets.
func (s KindSet) Union(other KindSet) KindSet { return s | other }

// Has reports whether kind is a member of the set.
func (s KindSet) Has(kind Kind) bool {
	bit := kind.bit()
	return bit != 0 && s&bit != 0
}

// Len returns the number of kinds in the set.
func (s KindSet) Len() int {
	n := 0
	for _, kind := range AllKinds {
		if s.Has(kind) {
			n++
		}
	}
	return n
}

// Kinds returns the members in display order.
func (s KindSet) Kinds() []Kind {
	out := make([]Kind, 0, len(AllKinds))
	for _, kind := range AllKinds {
		if s.Has(kind) {
			out = append(out, kind)
		}
	}
	return out
}

func (s KindSet) String() string {
	kinds := s.Kinds()
	if len(kinds) == 0 {
		return "none"
	}
	names := make([]string, len(kinds))
	for i, kind := range kinds {
		names[i] = kind.String()
	}
	return strings.Join(names, "+")
}

// Annotation carries optional free-form context attached by a provider.
type Annotation struct {
	Keyword string
	Excerpt string
	Label   string
	Score   float64
}

// SignalEvent is one "interesting instant" reported by an evidence provider.
// Events are produced once per provider run and never mutated.
type SignalEvent struct {
	// Timestamp is seconds from the start of the recording.
	Timestamp float64
	Kind      Kind
	// Whole marks an event that applies to the whole recording and has no
	// time anchor, such as a keyword found in an unaligned transcript.
	Whole      bool
	Annotation *Annotation
}

// Instant is one coalesced timeline entry.
type Instant struct {
	Timestamp float64
	Kinds     KindSet
	// Count is the number of raw events merged into this instant.
	Count int
}

// Timeline is the ascending, coalesced sequence of candidate instants for a
// single recording.
type Timeline []Instant

// Timestamps returns the instant timestamps in order.
func (tl Timeline) Timestamps() []float64 {
	out := make([]float64, len(tl))
	for i, inst := range tl {
		out[i] = inst.Timestamp
	}
	return out
}

// ClipWindow is a time range selected for extraction.
type ClipWindow struct {
	Start   float64
	End     float64
	Trigger float64
	Kinds   KindSet
}

// Duration returns the window length in seconds.
func (w ClipWindow) Duration() float64 { return w.End - w.Start }

func (w ClipWindow) String() string {
	return fmt.Sprintf("[%.3f,%.3f) trigger=%.3f kinds=%s", w.Start, w.End, w.Trigger, w.Kinds)
}
