package highlight

import (
	"math"
	"sort"
)

// Aggregate merges every provider's events into one Timeline. Events closer
// than epsilon to their predecessor join the same run; each run collapses to
// its earliest timestamp and keeps the union of contributing kinds. Empty or
// nil sets contribute nothing. Whole-recording events and non-finite
// timestamps carry no position and are left off the timeline.
func Aggregate(sets [][]SignalEvent, epsilon float64) Timeline {
	if epsilon < 0 || math.IsNaN(epsilon) {
		epsilon = 0
	}

	total := 0
	for _, set := range sets {
		total += len(set)
	}
	if total == 0 {
		return nil
	}

	events := make([]SignalEvent, 0, total)
	for _, set := range sets {
		for _, ev := range set {
			if ev.Whole || math.IsNaN(ev.Timestamp) || math.IsInf(ev.Timestamp, 0) {
				continue
			}
			events = append(events, ev)
		}
	}
	if len(events) == 0 {
		return nil
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Timestamp != events[j].Timestamp {
			return events[i].Timestamp < events[j].Timestamp
		}
		return events[i].Kind < events[j].Kind
	})

	out := make(Timeline, 0, len(events))
	current := Instant{Timestamp: events[0].Timestamp, Kinds: KindSet(0).With(events[0].Kind), Count: 1}
	prev := events[0].Timestamp
	for _, ev := range events[1:] {
		// Chain on the previous raw timestamp, not the representative, so a
		// steady stream of samples stays one run.
		if ev.Timestamp-prev <= epsilon {
			current.Kinds = current.Kinds.With(ev.Kind)
			current.Count++
		} else {
			out = append(out, current)
			current = Instant{Timestamp: ev.Timestamp, Kinds: KindSet(0).With(ev.Kind), Count: 1}
		}
		prev = ev.Timestamp
	}
	out = append(out, current)
	return out
}
