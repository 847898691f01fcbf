package textutil

import "strings"

// SanitizeFileName makes a video title safe to embed in work and output
// paths. Path separators, colons, and asterisks become dashes; shell and
// Windows reserved characters are dropped; surrounding whitespace is trimmed.
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.TrimSpace(name) {
		switch r {
		case '/', '\\', ':', '*':
			b.WriteByte('-')
		case '?', '"', '<', '>', '|':
			// dropped outright
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// SanitizeToken reduces a title to a lowercase token for rendered output
// filenames: letters lowercased, digits and -/_ kept, every other rune
// collapsed to an underscore. Empty or fully-stripped input yields "unknown"
// so an untitled item still produces a readable filename.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r - 'A' + 'a')
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
