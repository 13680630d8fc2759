package voice

import (
	"dubline/internal/config"
)

// Classification buckets a synthesized duration against its slot.
type Classification string

const (
	ClassZeroDuration Classification = "zero_duration"
	ClassTooShort     Classification = "too_short"
	ClassAcceptable   Classification = "acceptable"
	ClassTrimmable    Classification = "over_slot_trimmable"
	ClassTooLarge     Classification = "over_slot_too_large"
)

// Classify maps a measured duration onto a quality bucket. Only
// zero-duration is a failure; everything else is accepted as best effort
// and handled by the fit plan.
func Classify(durationMS, slotMS int64, syn config.Synthesis) Classification {
	switch {
	case durationMS <= 0:
		return ClassZeroDuration
	case float64(durationMS) < float64(slotMS)*syn.TooShortRatio:
		return ClassTooShort
	case float64(durationMS) <= float64(slotMS)*syn.OverrunTolerance:
		return ClassAcceptable
	case float64(durationMS) <= float64(slotMS)*syn.TrimmableRatio:
		return ClassTrimmable
	default:
		return ClassTooLarge
	}
}

// FitAction names the audio operation that makes a clip fill its slot.
type FitAction string

const (
	// ActionPad pads with trailing silence up to the slot. A clip already
	// at slot length passes through unchanged.
	ActionPad FitAction = "pad"
	// ActionSpeedTrim applies a bounded pitch-neutral speedup and then
	// trims to the exact slot length.
	ActionSpeedTrim FitAction = "speed_trim"
	// ActionTrim hard-trims with a tail fade, accepting the quality loss.
	ActionTrim FitAction = "trim"
	// ActionSilence substitutes full slot silence.
	ActionSilence FitAction = "silence"
)

// Plan describes how to fit one clip into its slot.
type Plan struct {
	Action      FitAction
	SlotMS      int64
	SpeedFactor float64
}

// PlanFit decides the fit operation for a measured duration. Pure so the
// decision table is testable without audio files.
func PlanFit(durationMS, slotMS int64, speedupCeiling float64) Plan {
	if durationMS <= 0 {
		return Plan{Action: ActionSilence, SlotMS: slotMS}
	}
	if durationMS <= slotMS {
		return Plan{Action: ActionPad, SlotMS: slotMS}
	}
	factor := float64(durationMS) / float64(slotMS)
	if factor <= speedupCeiling {
		return Plan{Action: ActionSpeedTrim, SlotMS: slotMS, SpeedFactor: factor}
	}
	return Plan{Action: ActionTrim, SlotMS: slotMS}
}

// candidate is one synthesis attempt for a cue.
type candidate struct {
	attempt    int
	path       string
	durationMS int64
	text       string
}

// betterCandidate reports whether a beats b. Under-slot durations closest
// to the slot win; any over-slot candidate loses to any under-slot one.
// Equal scores keep the earliest attempt.
func betterCandidate(a, b candidate, slotMS int64) bool {
	scoreA := candidateScore(a.durationMS, slotMS)
	scoreB := candidateScore(b.durationMS, slotMS)
	if scoreA != scoreB {
		return scoreA < scoreB
	}
	return a.attempt < b.attempt
}

func candidateScore(durationMS, slotMS int64) int64 {
	if durationMS <= 0 {
		// Worse than anything with audible output.
		return 1 << 40
	}
	if durationMS <= slotMS {
		return slotMS - durationMS
	}
	// Over-slot penalty keeps any under-slot candidate ahead.
	return (durationMS - slotMS) + slotMS
}
