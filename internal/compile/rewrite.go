package compile

import (
	"strings"
	"unicode"
)

// Rewriter applies a fixed dictionary of casual phrasing substitutions to the
// transcript. The mapping is static so the same transcript always rewrites
// the same way.
type Rewriter struct {
	replacements map[string]string
}

// NewRewriter builds the default rewriter.
func NewRewriter() *Rewriter {
	return &Rewriter{replacements: map[string]string{
		"very":      "super",
		"really":    "lowkey",
		"amazing":   "insane",
		"great":     "fire",
		"good":      "solid",
		"bad":       "mid",
		"friend":    "bro",
		"friends":   "bros",
		"crazy":     "wild",
		"honestly":  "no cap",
		"seriously": "fr",
		"awesome":   "goated",
	}}
}

// Rewrite replaces dictionary words token by token, preserving whitespace,
// punctuation, and leading capitalization. The second return reports whether
// any substitution happened.
func (r *Rewriter) Rewrite(text string) (string, bool) {
	if text == "" {
		return "", false
	}

	var sb strings.Builder
	sb.Grow(len(text))
	applied := false

	token := strings.Builder{}
	flush := func() {
		if token.Len() == 0 {
			return
		}
		word := token.String()
		token.Reset()
		replacement, ok := r.replacements[strings.ToLower(word)]
		if !ok {
			sb.WriteString(word)
			return
		}
		applied = true
		sb.WriteString(matchCase(word, replacement))
	}

	for _, ch := range text {
		if unicode.IsLetter(ch) || ch == '\'' {
			token.WriteRune(ch)
			continue
		}
		flush()
		sb.WriteRune(ch)
	}
	flush()
	return sb.String(), applied
}

// matchCase carries the source word's leading capitalization onto the
// replacement. Multi-word replacements capitalize only the first word.
func matchCase(source, replacement string) string {
	if source == "" || replacement == "" {
		return replacement
	}
	first := []rune(source)[0]
	if !unicode.IsUpper(first) {
		return replacement
	}
	runes := []rune(replacement)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
