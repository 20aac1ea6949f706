// Package jsonx extracts JSON objects from messy LLM output.
//
// Models wrap JSON in code fences, prepend prose, or emit almost-JSON with
// trailing commas and unquoted keys. ExtractObject applies ordered repair
// stages and reports success via a boolean instead of an error, since a
// failed extraction is an expected condition at the provider boundary.
package jsonx

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	trailingCommaRe = regexp.MustCompile(`,(\s*[}\]])`)
	unquotedKeyRe   = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
)

// ExtractObject returns the first JSON object found in raw after cleaning,
// or ok=false when no parseable object can be recovered.
//
// Stages, in order: strip markdown fences; slice out the first balanced
// {...} block; parse; on failure repair trailing commas and unquoted keys
// and parse once more.
func ExtractObject(raw string) (json.RawMessage, bool) {
	s := stripFences(raw)
	s = sliceBalancedObject(s)
	if s == "" {
		return nil, false
	}
	if json.Valid([]byte(s)) {
		return json.RawMessage(s), true
	}
	s = repair(s)
	if json.Valid([]byte(s)) {
		return json.RawMessage(s), true
	}
	return nil, false
}

// DecodeObject extracts and unmarshals the first JSON object in raw into v.
func DecodeObject(raw string, v any) bool {
	obj, ok := ExtractObject(raw)
	if !ok {
		return false
	}
	return json.Unmarshal(obj, v) == nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// sliceBalancedObject returns the first balanced {...} block, or "" when
// there is none. Brace counting ignores braces inside string literals.
func sliceBalancedObject(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

func repair(s string) string {
	s = trailingCommaRe.ReplaceAllString(s, "$1")
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2":`)
	return s
}
