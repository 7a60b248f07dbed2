// Package preflight provides readiness checks for the filesystem paths,
// external binaries and services a highlight run depends on.
//
// These checks run in two contexts:
//   - "highlighter run" calls RunAll before probing the recording, so a
//     read-only clips directory fails in milliseconds instead of after
//     minutes of analysis.
//   - "highlighter deps" prints CheckSystemDeps alongside RunAll.
//
// Provider-specific checks are gated by the active preset.
package preflight
