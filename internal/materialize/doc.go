// Package materialize cuts scheduled windows out of a recording into clip
// files under <clips_dir>/<recording>/clip_<idx>.mp4.
//
// Every clip is encoded into a hidden .part file next to its destination and
// renamed into place only after ffmpeg exits cleanly, so an interrupted or
// cancelled encode never leaves a complete-looking clip behind. A recording's
// clip directory is guarded by an advisory file lock for the duration of a
// run so two processes cannot interleave clips of the same recording.
package materialize
