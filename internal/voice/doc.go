// Package voice turns finished subtitle tracks into synthesized voice
// tracks whose cue timing matches the subtitle timeline exactly.
//
// The orchestrator decides which subtitle tracks get a voice track and pins
// a voice identity at creation. The engine then walks the cue timeline with
// a monotonic cursor, synthesizing each cue under a character budget,
// classifying the result against its slot, and fitting it with padding, a
// bounded pitch-neutral speedup, or a trim with fade. Gaps and the timeline
// tail become silence so absolute alignment with the source video survives.
package voice
