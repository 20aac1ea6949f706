// Package ai holds pieces shared by the provider adapters: the evaluation
// prompt contract and the lenient parsing of provider score payloads.
package ai

import (
	"fmt"
	"strings"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

// EvaluationSystemPrompt is the shared scoring instruction. Providers are
// asked for strict JSON; ParseOutcome tolerates the ways they fail at that.
const EvaluationSystemPrompt = `You are an expert interview assessor. Score the candidate's answer on a 0-100 integer scale per metric.

Respond with ONLY a JSON object, no prose, using exactly these keys:
{"confidence": int, "communication": int, "grammar": int, "technical_accuracy": int, "speaking_speed": int, "feedback_tips": [string], "improvements": [string], "relevance_notes": string}

Omit any metric you cannot judge from text alone. Keep feedback_tips and improvements short and specific, at most 3 entries each.`

// EvaluationUserPrompt renders one answer for scoring.
func EvaluationUserPrompt(in domain.EvalInput) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Interview category: %s\n", in.Category)
	if in.TargetRole != "" {
		fmt.Fprintf(&b, "Target role: %s\n", in.TargetRole)
	}
	fmt.Fprintf(&b, "Question: %s\n", in.QuestionPrompt)
	if len(in.Tags) > 0 {
		fmt.Fprintf(&b, "Expected topics: %s\n", strings.Join(in.Tags, ", "))
	}
	if in.DurationSec > 0 {
		fmt.Fprintf(&b, "Answer duration: %d seconds\n", in.DurationSec)
	}
	fmt.Fprintf(&b, "\nCandidate answer:\n%s\n", in.Transcript)
	return b.String()
}
