// Package transcripts implements the transcription lane: it extracts a
// clean mono audio track from the owner's source media, runs speech to
// text, applies a conservative cleanup pass, derives a tone profile from
// the segment timings, and fans out default subtitle tracks once the
// transcript is durable.
package transcripts
