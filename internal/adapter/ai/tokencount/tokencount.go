// Package tokencount bounds prompt sizes for LLM calls.
//
// It uses tiktoken-go so the dialogue engine's context blocks stay inside a
// fixed token budget instead of a crude byte cap.
package tokencount

import (
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

func encoding() *tiktoken.Tiktoken {
	encOnce.Do(func() {
		e, err := tiktoken.GetEncoding(encodingName)
		if err != nil {
			// Fall back to the approximate path in Count/Truncate.
			return
		}
		enc = e
	})
	return enc
}

// Count returns the token count of text, approximating at four characters
// per token when the encoding is unavailable.
func Count(text string) int {
	if e := encoding(); e != nil {
		return len(e.Encode(text, nil, nil))
	}
	return (len(text) + 3) / 4
}

// Truncate trims text to at most maxTokens tokens, keeping the head.
func Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if e := encoding(); e != nil {
		toks := e.Encode(text, nil, nil)
		if len(toks) <= maxTokens {
			return text
		}
		return e.Decode(toks[:maxTokens])
	}
	max := maxTokens * 4
	if len(text) <= max {
		return text
	}
	return text[:max]
}
