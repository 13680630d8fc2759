// Package audio drives ffmpeg for the pipeline's audio plumbing: source
// extraction for transcription, per-cue shaping of synthesized clips
// (silence, padding, bounded speedup, trims with fades), and final track
// assembly. All invocations flow through an injectable command runner so
// behavior can be scripted in tests without ffmpeg installed.
package audio
