// Package followup produces the single follow-up question asked after an
// answer. It prefers a provider-generated question and falls back to a
// deterministic template so a follow-up is always available.
package followup

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/pkg/textx"
)

const systemInstruction = "You are an interview coach. Write exactly one short, specific follow-up question about the candidate's answer. Output only the question, no preamble."

// Generator tries each provider in order and stops at the first usable line.
type Generator struct {
	providers []domain.Provider
}

// New constructs a Generator over an ordered provider list.
func New(providers []domain.Provider) *Generator {
	return &Generator{providers: providers}
}

// Next returns one follow-up question for the given answer. Provider errors
// degrade to the deterministic fallback; Next never returns an empty string.
func (g *Generator) Next(ctx domain.Context, category, role, prompt, answer string) string {
	user := fmt.Sprintf("Question: %s\nCandidate answer: %s\nTarget role: %s", prompt, answer, role)
	for _, p := range g.providers {
		raw, err := p.GenerateText(ctx, systemInstruction, user, 0.5, 80)
		if err != nil {
			slog.Debug("follow-up generation failed", slog.String("provider", p.Name()), slog.Any("error", err))
			continue
		}
		if q := cleanQuestion(raw); q != "" {
			return q
		}
	}
	return Fallback(category, role, answer)
}

// cleanQuestion extracts the first non-empty line and strips any role label
// the model prepended.
func cleanQuestion(raw string) string {
	line := textx.FirstLine(textx.StripRoleLabel(raw))
	line = strings.Trim(line, `"' `)
	if line == "" || len(line) > 300 {
		return ""
	}
	if !strings.HasSuffix(line, "?") {
		line += "?"
	}
	return line
}

// Fallback builds a deterministic follow-up anchored on the answer's first
// substantial word, so the question stays zero-network and still feels tied
// to what the candidate said.
func Fallback(category, role, answer string) string {
	anchor := role
	for _, t := range textx.Tokenize(answer) {
		if len(t) >= 6 {
			anchor = t
			break
		}
	}
	if anchor == "" {
		anchor = "that"
	}
	switch category {
	case domain.CategoryTechnical, domain.CategoryCoding:
		return fmt.Sprintf("Can you go deeper on %s and explain the trade-offs you considered?", anchor)
	case domain.CategoryBehavioral:
		return fmt.Sprintf("What was the measurable result of %s, and what would you do differently?", anchor)
	default:
		return fmt.Sprintf("Can you give a concrete example involving %s from your own experience?", anchor)
	}
}
