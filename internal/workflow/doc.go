// Package workflow drives the dubbing pipeline lanes.
//
// The Manager runs one goroutine per registered lane handler (transcribe,
// subtitle, voice). Each lane claims the oldest pending row in its table,
// keeps a heartbeat alive while the handler executes, and records failures
// with retry accounting. Stale running rows whose worker died are reclaimed
// back to pending on a timer.
//
// Lanes are independent by construction: a transcript can be transcribed
// while another item's subtitles render and a third item's voice track is
// synthesized. Ordering between lanes is enforced by row creation, not by
// the manager; a subtitle row only exists once its transcript is done.
package workflow
