package subtitles

import (
	"regexp"
	"strings"
)

var adPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)opensubtitles`),
	regexp.MustCompile(`(?i)subtitles? by`),
	regexp.MustCompile(`(?i)synced? and corrected`),
	regexp.MustCompile(`(?i)advertise (your|yours?) product`),
	regexp.MustCompile(`(?i)http(s)?://`),
	regexp.MustCompile(`(?i)\bwww\.`),
	regexp.MustCompile(`(?i)\bsubscene\b`),
	regexp.MustCompile(`(?i)\byts\b`),
	regexp.MustCompile(`(?i)\byify\b`),
}

// CleanStats reports the effects of cue cleanup.
type CleanStats struct {
	RemovedCues int
}

// CleanCues drops advertisement cues and normalizes whitespace in the rest.
// Synthesizing an ad into a dubbed track is worse than a short silence.
func CleanCues(cues []Cue) ([]Cue, CleanStats) {
	var stats CleanStats
	cleaned := make([]Cue, 0, len(cues))
	for _, cue := range cues {
		if cueIsAdvertisement(cue.Text) {
			stats.RemovedCues++
			continue
		}
		cue.Text = normalizeWhitespace(cue.Text)
		cleaned = append(cleaned, cue)
	}
	return cleaned, stats
}

func cueIsAdvertisement(text string) bool {
	payload := strings.ToLower(strings.TrimSpace(text))
	if payload == "" {
		return false
	}
	for _, pattern := range adPatterns {
		if pattern.MatchString(payload) {
			return true
		}
	}
	return false
}

func normalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
