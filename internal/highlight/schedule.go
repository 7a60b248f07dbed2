package highlight

import (
	"math"
	"sort"
)

// ScheduleParams controls window placement. All values are seconds.
type ScheduleParams struct {
	PrePad   float64
	PostPad  float64
	MinGap   float64
	Duration float64
}

// Validate rejects negative or non-finite parameters.
func (p ScheduleParams) Validate() error {
	checks := []struct {
		field    string
		value    float64
		positive bool
	}{
		{"pre_pad", p.PrePad, false},
		{"post_pad", p.PostPad, false},
		{"min_gap", p.MinGap, false},
		{"duration", p.Duration, true},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return &ValidationError{Field: c.field, Value: c.value, Reason: "must be finite"}
		}
		if c.positive && c.value <= 0 {
			return &ValidationError{Field: c.field, Value: c.value, Reason: "must be positive"}
		}
		if c.value < 0 {
			return &ValidationError{Field: c.field, Value: c.value, Reason: "must be >= 0"}
		}
	}
	return nil
}

// Schedule walks the timeline left to right and emits non-overlapping windows.
//
// A window opens PrePad before its instant (never before 0) and spans
// PrePad+PostPad clamped to Duration. An instant whose window would open
// before the cursor (the previous window's end plus MinGap) is suppressed,
// whatever its kind. Instants outside [0, Duration] are clamped onto the
// recording; one that lands on the very end with no pre-roll gets the span
// leading up to the end instead. With no span at all the first window becomes
// [0, Duration) and later ones are dropped.
func Schedule(tl Timeline, p ScheduleParams) ([]ClipWindow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	for _, inst := range tl {
		if math.IsNaN(inst.Timestamp) || math.IsInf(inst.Timestamp, 0) {
			return nil, &ValidationError{Field: "timestamp", Value: inst.Timestamp, Reason: "must be finite"}
		}
	}
	if len(tl) == 0 {
		return nil, nil
	}

	points := make(Timeline, len(tl))
	for i, inst := range tl {
		inst.Timestamp = clamp(inst.Timestamp, 0, p.Duration)
		points[i] = inst
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Timestamp < points[j].Timestamp })

	span := p.PrePad + p.PostPad
	windows := make([]ClipWindow, 0, 8)
	cursor := 0.0
	for _, inst := range points {
		t := inst.Timestamp
		start := math.Max(t-p.PrePad, 0)
		if start < cursor {
			continue
		}
		end := math.Min(p.Duration, start+span)
		if end <= start {
			switch {
			case span > 0:
				start = math.Max(math.Max(p.Duration-span, 0), cursor)
				end = p.Duration
				if end <= start {
					continue
				}
			case len(windows) == 0:
				start, end = 0, p.Duration
			default:
				continue
			}
		}
		windows = append(windows, ClipWindow{
			Start:   start,
			End:     end,
			Trigger: t,
			Kinds:   kindsWithin(points, start, end).Union(inst.Kinds),
		})
		cursor = end + p.MinGap
	}
	return windows, nil
}

// kindsWithin unions the kinds of instants in [start, end). points is sorted.
func kindsWithin(points Timeline, start, end float64) KindSet {
	lo := sort.Search(len(points), func(i int) bool { return points[i].Timestamp >= start })
	var set KindSet
	for i := lo; i < len(points) && points[i].Timestamp < end; i++ {
		set = set.Union(points[i].Kinds)
	}
	return set
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
