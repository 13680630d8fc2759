package voice

import (
	"math"

	"dubline/internal/language"
	"dubline/internal/textutil"
)

// CharBudget computes how many characters fit a slot for a language,
// scaled by the speaker's pace multiplier. A slower speaker gets a smaller
// budget so the synthesized line still fits the slot at their pace.
func CharBudget(slotMS int64, lang string, paceMultiplier float64) int {
	if slotMS <= 0 {
		return 0
	}
	if paceMultiplier <= 0 {
		paceMultiplier = 1.0
	}
	budget := float64(slotMS) / 1000.0 * language.CharsPerSecond(lang) * paceMultiplier
	if budget < 1 {
		return 1
	}
	return int(math.Floor(budget))
}

// SpeakableText reduces cue text to the slot budget with a deterministic
// clamp at a sentence or word boundary. Meaning is preserved by cutting,
// never by inventing.
func SpeakableText(text string, budget int) string {
	return textutil.ClampToBudget(text, budget)
}
