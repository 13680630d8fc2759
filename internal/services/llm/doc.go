// Package llm wraps the optional naturalness pass that rewrites machine
// translations into speech that reads like a native speaker wrote it. The
// pass is versioned by prompt so cached output can be re-run when the
// prompt improves.
package llm
