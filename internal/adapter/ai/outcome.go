package ai

import (
	"fmt"
	"math"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/pkg/jsonx"
)

// outcomePayload mirrors the JSON contract of EvaluationSystemPrompt.
// Pointers distinguish "omitted" from zero; floats tolerate models that
// emit non-integer scores.
type outcomePayload struct {
	Confidence        *float64 `json:"confidence"`
	Communication     *float64 `json:"communication"`
	Grammar           *float64 `json:"grammar"`
	TechnicalAccuracy *float64 `json:"technical_accuracy"`
	SpeakingSpeed     *float64 `json:"speaking_speed"`
	FacialExpression  *float64 `json:"facial_expression"`
	FeedbackTips      []string `json:"feedback_tips"`
	Improvements      []string `json:"improvements"`
	RelevanceNotes    string   `json:"relevance_notes"`
}

// ParseOutcome extracts a partial score set from raw provider text.
// It uses loose JSON extraction, so fenced or prose-wrapped payloads still
// parse; anything unrecoverable is an error the fan-out absorbs.
func ParseOutcome(source, raw string) (*domain.ProviderOutcome, error) {
	var p outcomePayload
	if !jsonx.DecodeObject(raw, &p) {
		return nil, fmt.Errorf("op=ai.parse_outcome: %w: no JSON object in %s response", domain.ErrInvalidArgument, source)
	}
	out := &domain.ProviderOutcome{
		Source:            source,
		Confidence:        toScore(p.Confidence),
		Communication:     toScore(p.Communication),
		Grammar:           toScore(p.Grammar),
		SpeakingSpeed:     toScore(p.SpeakingSpeed),
		FacialExpression:  toScore(p.FacialExpression),
		TechnicalAccuracy: toScore(p.TechnicalAccuracy),
		FeedbackTips:      p.FeedbackTips,
		Improvements:      p.Improvements,
		RelevanceNotes:    p.RelevanceNotes,
	}
	if !out.HasAnyMetric() {
		return nil, fmt.Errorf("op=ai.parse_outcome: %w: %s reported no metrics", domain.ErrInvalidArgument, source)
	}
	return out, nil
}

func toScore(v *float64) *int {
	if v == nil {
		return nil
	}
	s := int(math.Round(*v))
	if s < 0 {
		s = 0
	}
	if s > 100 {
		s = 100
	}
	return &s
}
