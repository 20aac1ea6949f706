// Package stub provides a fast, deterministic provider for local development
// and tests. No network, no keys.
package stub

import (
	"hash/fnv"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

// Client is a deterministic in-process provider.
type Client struct{}

// New constructs the stub provider.
func New() *Client { return &Client{} }

// Name implements domain.Provider.
func (c *Client) Name() string { return "stub" }

// Evaluate derives stable scores from the transcript content so repeated
// runs produce identical evaluations.
func (c *Client) Evaluate(_ domain.Context, in domain.EvalInput) (*domain.ProviderOutcome, error) {
	base := 55 + int(hashOf(in.Transcript)%30) // 55..84
	conf := clamp(base + 4)
	comm := clamp(base)
	gram := clamp(base + 8)
	tech := clamp(base - 3)
	return &domain.ProviderOutcome{
		Source:            c.Name(),
		Confidence:        &conf,
		Communication:     &comm,
		Grammar:           &gram,
		TechnicalAccuracy: &tech,
		FeedbackTips:      []string{"Structure your answer with a clear situation, action and result."},
		Improvements:      []string{"Quantify the outcome of the work you describe."},
		RelevanceNotes:    "Stub assessment based on answer length and content hash.",
	}, nil
}

// GenerateText returns a fixed, plausible line for any prompt.
func (c *Client) GenerateText(_ domain.Context, _, _ string, _ float64, _ int) (string, error) {
	return "Could you walk me through the most challenging part of that in more detail?", nil
}

func hashOf(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
