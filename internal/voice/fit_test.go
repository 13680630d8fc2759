package voice

import (
	"testing"

	"dubline/internal/config"
)

func synthDefaults() config.Synthesis {
	return config.Synthesis{
		MinSlotMillis:    180,
		OverrunTolerance: 1.05,
		TrimmableRatio:   1.25,
		SpeedupCeiling:   1.08,
		TooShortRatio:    0.45,
	}
}

func TestClassify(t *testing.T) {
	syn := synthDefaults()
	cases := []struct {
		name     string
		duration int64
		slot     int64
		want     Classification
	}{
		{"zero", 0, 1000, ClassZeroDuration},
		{"negative", -5, 1000, ClassZeroDuration},
		{"too short", 400, 1000, ClassTooShort},
		{"barely viable", 450, 1000, ClassAcceptable},
		{"exact", 1000, 1000, ClassAcceptable},
		{"within tolerance", 1050, 1000, ClassAcceptable},
		{"trimmable", 1200, 1000, ClassTrimmable},
		{"at trim limit", 1250, 1000, ClassTrimmable},
		{"too large", 1400, 1000, ClassTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.duration, tc.slot, syn); got != tc.want {
				t.Fatalf("Classify(%d, %d) = %s, want %s", tc.duration, tc.slot, got, tc.want)
			}
		})
	}
}

func TestPlanFit(t *testing.T) {
	cases := []struct {
		name       string
		duration   int64
		slot       int64
		wantAction FitAction
	}{
		{"zero becomes silence", 0, 1000, ActionSilence},
		{"under slot pads", 600, 1000, ActionPad},
		{"exact passes through pad", 1000, 1000, ActionPad},
		{"small overrun speeds up", 1050, 1000, ActionSpeedTrim},
		{"at ceiling speeds up", 1080, 1000, ActionSpeedTrim},
		{"past ceiling trims directly", 1400, 1000, ActionTrim},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan := PlanFit(tc.duration, tc.slot, 1.08)
			if plan.Action != tc.wantAction {
				t.Fatalf("PlanFit(%d, %d) = %s, want %s", tc.duration, tc.slot, plan.Action, tc.wantAction)
			}
			if plan.SlotMS != tc.slot {
				t.Fatalf("plan slot %d, want %d", plan.SlotMS, tc.slot)
			}
			if plan.Action == ActionSpeedTrim && plan.SpeedFactor <= 1.0 {
				t.Fatalf("speedup plan with factor %f", plan.SpeedFactor)
			}
		})
	}
}

func TestBetterCandidatePrefersUnderSlot(t *testing.T) {
	slot := int64(1000)
	under := candidate{attempt: 1, durationMS: 700}
	over := candidate{attempt: 0, durationMS: 1010}
	if !betterCandidate(under, over, slot) {
		t.Fatal("under-slot candidate must beat over-slot candidate")
	}

	closer := candidate{attempt: 1, durationMS: 950}
	farther := candidate{attempt: 0, durationMS: 600}
	if !betterCandidate(closer, farther, slot) {
		t.Fatal("closer under-slot candidate must win")
	}

	zero := candidate{attempt: 0, durationMS: 0}
	anything := candidate{attempt: 1, durationMS: 1900}
	if !betterCandidate(anything, zero, slot) {
		t.Fatal("any audible candidate must beat zero duration")
	}
}

func TestBetterCandidateTieBreaksOnEarliestAttempt(t *testing.T) {
	slot := int64(1000)
	first := candidate{attempt: 0, durationMS: 900}
	second := candidate{attempt: 1, durationMS: 900}
	if betterCandidate(second, first, slot) {
		t.Fatal("equal scores must keep the earliest attempt")
	}
	if !betterCandidate(first, second, slot) {
		t.Fatal("earliest attempt must win the tie")
	}
}

func TestCharBudgetScalesWithPace(t *testing.T) {
	base := CharBudget(2000, "en", 1.0)
	slower := CharBudget(2000, "en", 0.8)
	faster := CharBudget(2000, "en", 1.2)
	if !(slower < base && base < faster) {
		t.Fatalf("budget ordering broken: slow=%d base=%d fast=%d", slower, base, faster)
	}
	if CharBudget(0, "en", 1.0) != 0 {
		t.Fatal("zero slot must have zero budget")
	}
	// Unknown pace multiplier falls back to neutral.
	if CharBudget(2000, "en", 0) != base {
		t.Fatal("zero pace multiplier must behave as 1.0")
	}
}
