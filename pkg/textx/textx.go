// Package textx provides small text utilities used across the project.
package textx

import (
	"strings"
	"unicode"
)

// SanitizeText removes control characters except tab/newline/CR and trims spaces.
func SanitizeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Tokenize lowercases s and splits it into alphanumeric word tokens.
func Tokenize(s string) []string {
	s = strings.ToLower(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// WordCount returns the number of alphanumeric word tokens in s.
func WordCount(s string) int { return len(Tokenize(s)) }

// Sentences splits s on terminal punctuation and drops empty segments.
func Sentences(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, strings.TrimSpace(p))
		}
	}
	return out
}

// TokenSet returns the distinct tokens of s with length >= minLen.
func TokenSet(s string, minLen int) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range Tokenize(s) {
		if len(t) >= minLen {
			set[t] = struct{}{}
		}
	}
	return set
}

// FirstLine returns the first non-empty line of s, trimmed.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}

// StripRoleLabel removes a leading "Label:" prefix such as "Interviewer:" or
// "Judge:" that text-generation models tend to echo back.
func StripRoleLabel(s string) string {
	t := strings.TrimSpace(s)
	for _, label := range []string{"Interviewer:", "Judge:", "Answer:", "Response:", "AI:"} {
		if strings.HasPrefix(t, label) {
			return strings.TrimSpace(strings.TrimPrefix(t, label))
		}
	}
	return t
}
