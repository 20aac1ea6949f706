package scoring

import (
	"time"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

// Fusion weights: heuristic baseline vs. mean of reporting providers.
const (
	heuristicWeight = 0.35
	providerWeight  = 0.65
)

// maxFeedbackItems caps feedback tips and improvements lists.
const maxFeedbackItems = 6

// metricField gives ordered, named access to the six fused metrics.
type metricField struct {
	name string
	get  func(domain.MetricScoreSet) int
	set  func(*domain.MetricScoreSet, int)
	pick func(domain.ProviderOutcome) *int
}

var metricFields = []metricField{
	{"confidence",
		func(m domain.MetricScoreSet) int { return m.Confidence },
		func(m *domain.MetricScoreSet, v int) { m.Confidence = v },
		func(o domain.ProviderOutcome) *int { return o.Confidence }},
	{"communication",
		func(m domain.MetricScoreSet) int { return m.Communication },
		func(m *domain.MetricScoreSet, v int) { m.Communication = v },
		func(o domain.ProviderOutcome) *int { return o.Communication }},
	{"grammar",
		func(m domain.MetricScoreSet) int { return m.Grammar },
		func(m *domain.MetricScoreSet, v int) { m.Grammar = v },
		func(o domain.ProviderOutcome) *int { return o.Grammar }},
	{"technical accuracy",
		func(m domain.MetricScoreSet) int { return m.TechnicalAccuracy },
		func(m *domain.MetricScoreSet, v int) { m.TechnicalAccuracy = v },
		func(o domain.ProviderOutcome) *int { return o.TechnicalAccuracy }},
	{"speaking speed",
		func(m domain.MetricScoreSet) int { return m.SpeakingSpeed },
		func(m *domain.MetricScoreSet, v int) { m.SpeakingSpeed = v },
		func(o domain.ProviderOutcome) *int { return o.SpeakingSpeed }},
	{"facial expression",
		func(m domain.MetricScoreSet) int { return m.FacialExpression },
		func(m *domain.MetricScoreSet, v int) { m.FacialExpression = v },
		func(o domain.ProviderOutcome) *int { return o.FacialExpression }},
}

// Overall is the fixed weighted composite of the six metrics.
// Weights sum to 1.0.
func Overall(m domain.MetricScoreSet) int {
	v := float64(m.Confidence)*0.2 +
		float64(m.Communication)*0.2 +
		float64(m.Grammar)*0.15 +
		float64(m.TechnicalAccuracy)*0.25 +
		float64(m.SpeakingSpeed)*0.1 +
		float64(m.FacialExpression)*0.1
	return clampScore(v)
}

// WeakestMetric returns the lowest of the six fused metrics. Ties resolve to
// the earlier metric in the fixed order.
func WeakestMetric(m domain.MetricScoreSet) (string, int) {
	name, low := metricFields[0].name, metricFields[0].get(m)
	for _, f := range metricFields[1:] {
		if v := f.get(m); v < low {
			name, low = f.name, v
		}
	}
	return name, low
}

// Fuse blends the heuristic baseline with whichever provider outcomes
// arrived. Per metric: round(heuristic*0.35 + mean(reported)*0.65) when at
// least one provider reported it, else the heuristic value unchanged.
func Fuse(h HeuristicResult, outcomes []*domain.ProviderOutcome, transcript string) domain.EvaluationResult {
	reported := make([]domain.ProviderOutcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o != nil {
			reported = append(reported, *o)
		}
	}

	var scores domain.MetricScoreSet
	for _, f := range metricFields {
		hv := f.get(h.Scores)
		var sum, n int
		for _, o := range reported {
			if p := f.pick(o); p != nil {
				sum += clampScore(float64(*p))
				n++
			}
		}
		if n == 0 {
			f.set(&scores, hv)
			continue
		}
		mean := float64(sum) / float64(n)
		f.set(&scores, clampScore(float64(hv)*heuristicWeight+mean*providerWeight))
	}
	scores.Clarity = scores.Communication
	scores.Relevance = scores.TechnicalAccuracy
	scores.Overall = Overall(scores)

	tips := dedupeCap(collect(reported, func(o domain.ProviderOutcome) []string { return o.FeedbackTips }))
	improvements := dedupeCap(collect(reported, func(o domain.ProviderOutcome) []string { return o.Improvements }))
	if len(tips) == 0 {
		tips = deriveStrengths(scores)
	}
	if len(improvements) == 0 {
		improvements = deriveImprovements(scores)
	}

	notes := h.RelevanceNote
	for _, o := range reported {
		if o.RelevanceNotes != "" {
			notes = o.RelevanceNotes
			break
		}
	}

	sources := make([]string, 0, len(reported)+1)
	sources = append(sources, "heuristic")
	for _, o := range reported {
		sources = append(sources, o.Source)
	}

	return domain.EvaluationResult{
		Scores:           scores,
		SpeakingSpeedWpm: h.SpeakingSpeedWpm,
		FeedbackTips:     tips,
		Improvements:     improvements,
		RelevanceNotes:   notes,
		Transcript:       transcript,
		Sources:          sources,
		CreatedAt:        time.Now().UTC(),
	}
}

// Thresholds for deriving strengths and improvements deterministically.
const (
	strengthThreshold    = 78
	improvementThreshold = 62
)

var strengthNotes = map[string]string{
	"confidence":        "You come across as confident; keep that energy.",
	"communication":     "Clear, well-paced communication.",
	"grammar":           "Clean, well-formed sentences.",
	"technical accuracy": "Your answer hits the technical core of the question.",
	"speaking speed":    "Good speaking pace, easy to follow.",
	"facial expression": "Engaged, positive on-camera presence.",
}

var improvementNotes = map[string]string{
	"confidence":        "Project more certainty: state outcomes you owned, not just tasks.",
	"communication":     "Tighten your sentences and cut filler words.",
	"grammar":           "Finish sentences cleanly and watch punctuation.",
	"technical accuracy": "Cover the core concepts the question asks about.",
	"speaking speed":    "Adjust your pace toward a conversational 110-160 words per minute.",
	"facial expression": "Keep a relaxed, engaged expression on camera.",
}

func deriveStrengths(m domain.MetricScoreSet) []string {
	var out []string
	for _, f := range metricFields {
		if f.get(m) >= strengthThreshold {
			out = append(out, strengthNotes[f.name])
		}
	}
	if len(out) == 0 {
		out = []string{"Solid baseline answer. Keep practicing with structured responses."}
	}
	return capList(out)
}

func deriveImprovements(m domain.MetricScoreSet) []string {
	var out []string
	for _, f := range metricFields {
		if f.get(m) < improvementThreshold {
			out = append(out, improvementNotes[f.name])
		}
	}
	if len(out) == 0 {
		out = []string{"Add concrete detail and one measurable outcome to push your scores higher."}
	}
	return capList(out)
}

func collect(outcomes []domain.ProviderOutcome, pick func(domain.ProviderOutcome) []string) []string {
	var all []string
	for _, o := range outcomes {
		all = append(all, pick(o)...)
	}
	return all
}

// dedupeCap keeps the first occurrence of each entry, at most maxFeedbackItems.
func dedupeCap(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, it := range items {
		if it == "" {
			continue
		}
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
		if len(out) == maxFeedbackItems {
			break
		}
	}
	return out
}

func capList(items []string) []string {
	if len(items) > maxFeedbackItems {
		return items[:maxFeedbackItems]
	}
	return items
}
