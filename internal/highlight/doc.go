// Package highlight fuses evidence from independent detectors into a single
// timeline and schedules non-overlapping clip windows over it.
//
// Aggregate merges provider outputs into a sorted Timeline, collapsing bursts
// of near-identical timestamps into one instant at the earliest onset while
// keeping track of which evidence kinds agreed. Schedule walks that timeline
// greedily and emits ClipWindows with pre/post padding and a cooldown gap
// between consecutive windows.
//
// Both functions are pure and hold no state between calls, so they are safe
// to run concurrently for different recordings and always return identical
// output for identical input.
package highlight
