// Package subtitles implements the subtitle lane: per-segment translation
// with a hash-keyed cache and optional naturalness pass, cue cleanup, and
// rendering to SRT or WebVTT. A track reaching done is the trigger that
// fans out voice synthesis.
package subtitles
