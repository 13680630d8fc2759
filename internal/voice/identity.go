package voice

import (
	"dubline/internal/language"
)

// The allowed identity set mirrors the provider's published voice catalog.
// Resolution must always land inside this set.
var allowedIdentities = map[string]struct{}{
	"alloy":   {},
	"ash":     {},
	"coral":   {},
	"echo":    {},
	"fable":   {},
	"onyx":    {},
	"nova":    {},
	"sage":    {},
	"shimmer": {},
}

// globalFallbackIdentity is the last resort when nothing else matches.
const globalFallbackIdentity = "alloy"

// Gender-only defaults used when the language has no specific entry.
// Distinct per gender so a known gender never collapses into the neutral
// voice.
const (
	fallbackMaleIdentity   = "onyx"
	fallbackFemaleIdentity = "nova"
)

type voiceSet struct {
	male    string
	female  string
	neutral string
}

// languageVoices maps canonical base languages to curated identities.
// Neutral entries are deliberately different from the gendered ones.
var languageVoices = map[string]voiceSet{
	"en": {male: "onyx", female: "nova", neutral: "alloy"},
	"es": {male: "echo", female: "shimmer", neutral: "alloy"},
	"pt": {male: "echo", female: "coral", neutral: "alloy"},
	"fr": {male: "ash", female: "shimmer", neutral: "alloy"},
	"de": {male: "onyx", female: "sage", neutral: "alloy"},
	"it": {male: "echo", female: "coral", neutral: "alloy"},
	"ja": {male: "fable", female: "sage", neutral: "alloy"},
	"ko": {male: "fable", female: "coral", neutral: "alloy"},
	"zh": {male: "ash", female: "sage", neutral: "alloy"},
}

// AllowedIdentity reports whether the identity is in the allowed set.
func AllowedIdentity(identity string) bool {
	_, ok := allowedIdentities[identity]
	return ok
}

// ResolveVoiceIdentity deterministically maps (language, gender hint) to a
// concrete synthesis voice. An explicit allow-listed identity wins; a known
// gender resolves through the language table or the gender-only defaults
// and never reaches the gender-agnostic voice; an unknown gender takes the
// language's neutral voice. The result is always a member of the allowed
// set.
func ResolveVoiceIdentity(lang, genderHint, explicit string) string {
	if explicit != "" && AllowedIdentity(explicit) {
		return explicit
	}

	base := language.BaseCode(language.Normalize(lang))
	set, hasLanguage := languageVoices[base]

	switch genderHint {
	case "male":
		if hasLanguage && set.male != "" {
			return set.male
		}
		return fallbackMaleIdentity
	case "female":
		if hasLanguage && set.female != "" {
			return set.female
		}
		return fallbackFemaleIdentity
	}

	if hasLanguage && set.neutral != "" {
		return set.neutral
	}
	return globalFallbackIdentity
}
