// Package deps reports whether the external binaries a run shells out to are
// installed, and which version each resolves to.
package deps
