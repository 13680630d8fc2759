package language

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	xlang "golang.org/x/text/language"
)

type entry struct {
	code    string   // ISO 639-1 (2-letter), the canonical code
	display string   // English name
	native  string   // Native-script name
	words   []string // Extra word forms matched case-insensitively
	cps     float64  // Typical speaking rate in characters per second
}

// The catalog is the single supported-language source of truth. The cps rates
// feed the slot character budget in voice synthesis; they are deliberately
// conservative averages for conversational speech.
var languages = []entry{
	{"en", "English", "English", nil, 14.5},
	{"es", "Spanish", "Español", []string{"castilian", "castellano"}, 15.5},
	{"pt", "Portuguese", "Português", nil, 15.0},
	{"fr", "French", "Français", nil, 15.0},
	{"de", "German", "Deutsch", nil, 13.5},
	{"it", "Italian", "Italiano", nil, 15.0},
	{"ja", "Japanese", "日本語", []string{"nihongo"}, 8.0},
	{"ko", "Korean", "한국어", []string{"hangugeo"}, 9.0},
	{"zh", "Chinese", "中文", []string{"mandarin", "putonghua"}, 5.5},
	{"ru", "Russian", "Русский", nil, 13.0},
	{"ar", "Arabic", "العربية", nil, 12.5},
	{"hi", "Hindi", "हिन्दी", nil, 12.5},
	{"nl", "Dutch", "Nederlands", []string{"flemish"}, 14.0},
	{"pl", "Polish", "Polski", nil, 13.5},
	{"tr", "Turkish", "Türkçe", nil, 13.0},
	{"sv", "Swedish", "Svenska", nil, 14.0},
	{"da", "Danish", "Dansk", nil, 14.0},
	{"no", "Norwegian", "Norsk", []string{"bokmal", "bokmål", "nynorsk"}, 14.0},
	{"fi", "Finnish", "Suomi", nil, 13.0},
	{"id", "Indonesian", "Bahasa Indonesia", []string{"bahasa"}, 14.5},
}

// sttAliases maps language names as returned by speech-to-text providers to
// canonical codes. Checked before the reverse catalog index so provider
// quirks ("castilian spanish") resolve without catalog churn.
var sttAliases = map[string]string{
	"english":                "en",
	"spanish":                "es",
	"castilian spanish":      "es",
	"latin american spanish": "es",
	"portuguese":             "pt",
	"brazilian portuguese":   "pt",
	"french":                 "fr",
	"german":                 "de",
	"italian":                "it",
	"japanese":               "ja",
	"korean":                 "ko",
	"chinese":                "zh",
	"simplified chinese":     "zh",
	"traditional chinese":    "zh",
	"russian":                "ru",
	"arabic":                 "ar",
	"hindi":                  "hi",
	"dutch":                  "nl",
	"polish":                 "pl",
	"turkish":                "tr",
	"swedish":                "sv",
	"danish":                 "da",
	"norwegian":              "no",
	"finnish":                "fi",
	"indonesian":             "id",
}

// codePattern accepts bare ISO codes and locale tags like pt-BR or zh-Hant.
var codePattern = regexp.MustCompile(`^[a-z]{2,3}(-[a-z]{2,4})?$`)

// Index maps built at init time.
var (
	byCode map[string]*entry
	byWord map[string]*entry
)

func init() {
	byCode = make(map[string]*entry, len(languages))
	byWord = make(map[string]*entry, len(languages)*3)
	for i := range languages {
		e := &languages[i]
		byCode[e.code] = e
		byWord[strings.ToLower(e.display)] = e
		byWord[strings.ToLower(e.native)] = e
		byWord[strings.ToLower(e.display+" ("+e.native+")")] = e
		for _, w := range e.words {
			byWord[strings.ToLower(w)] = e
		}
	}
}

// Normalize canonicalizes any language token (ISO code, locale tag, display
// name, native name, or combined label) into the stable code used for caching
// and gating. Unrecognized input yields the empty string. The function is pure;
// Normalize(Normalize(x)) == Normalize(x) for all x.
func Normalize(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	lowered := strings.ToLower(token)

	if codePattern.MatchString(lowered) {
		return lowered
	}
	if code, ok := sttAliases[lowered]; ok {
		return code
	}
	if e, ok := byWord[lowered]; ok {
		return e.code
	}
	// Fallback for unrecognized but plausible tokens. Restricted to purely
	// alphabetic input so the result always satisfies codePattern and the
	// function stays idempotent.
	if len(lowered) >= 2 && isAlphabetic(lowered) {
		return lowered[:2]
	}
	return ""
}

// BaseCode strips a regional or script subtag: pt-br -> pt, zh-hant -> zh.
// Used for allowlist gating so regional variants inherit their base language.
func BaseCode(code string) string {
	code = Normalize(code)
	if idx := strings.IndexByte(code, '-'); idx > 0 {
		return code[:idx]
	}
	return code
}

// Known reports whether the canonical code is in the supported catalog.
func Known(code string) bool {
	_, ok := byCode[BaseCode(code)]
	return ok
}

// Codes returns the canonical codes of every catalog language, in catalog order.
func Codes() []string {
	out := make([]string, len(languages))
	for i := range languages {
		out[i] = languages[i].code
	}
	return out
}

// DisplayName returns a human-readable language name for any recognized code.
// Returns "Unknown" for empty input, or the title-cased token for
// unrecognized input.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e, ok := byCode[BaseCode(code)]; ok {
		return e.display
	}
	return cases.Title(xlang.Und).String(strings.TrimSpace(code))
}

// CharsPerSecond returns the typical speaking rate for the canonical base
// language, falling back to a neutral rate for unknown languages.
func CharsPerSecond(code string) float64 {
	if e, ok := byCode[BaseCode(code)]; ok {
		return e.cps
	}
	return 14.0
}

func isAlphabetic(value string) bool {
	for _, r := range value {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
