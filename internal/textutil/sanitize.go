package textutil

import "strings"

// SanitizeToken converts a string into a lowercase token safe for file and
// directory names. Letters are lowercased; digits, hyphens, and underscores
// pass through; everything else becomes an underscore. Empty input (or input
// that sanitizes away entirely) yields "unknown".
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	token := strings.Trim(b.String(), "_-")
	if token == "" {
		return "unknown"
	}
	return token
}
