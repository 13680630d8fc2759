package textutil

import "strings"

var sentenceEnders = ".!?。！？"

// ClampToBudget shortens text to at most budget characters (counted in runes),
// preferring the last complete sentence that fits, then the last word
// boundary. The clamp never produces an empty result for non-empty input: if
// no boundary fits, the text is cut hard at the budget.
func ClampToBudget(text string, budget int) string {
	text = strings.TrimSpace(text)
	if budget <= 0 || text == "" {
		return text
	}
	runes := []rune(text)
	if len(runes) <= budget {
		return text
	}

	window := runes[:budget]

	// Last sentence boundary inside the window, if it keeps a useful share
	// of the budget.
	if cut := lastSentenceEnd(window); cut > 0 && cut >= budget/2 {
		return strings.TrimSpace(string(window[:cut]))
	}
	if cut := lastSpace(window); cut > 0 {
		return strings.TrimSpace(string(window[:cut]))
	}
	return strings.TrimSpace(string(window))
}

func lastSentenceEnd(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if strings.ContainsRune(sentenceEnders, runes[i]) {
			return i + 1
		}
	}
	return 0
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return 0
}
