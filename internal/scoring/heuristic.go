// Package scoring implements the network-free heuristic scorer, the
// heuristic/provider score fusion, and the session-level aggregation.
package scoring

import (
	"math"
	"regexp"
	"strings"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/pkg/textx"
)

// fillerWords is the fixed filler set for the communication metric.
var fillerWords = map[string]struct{}{
	"um": {}, "umm": {}, "uh": {}, "uhh": {}, "er": {}, "ah": {},
	"like": {}, "basically": {}, "actually": {}, "literally": {},
	"okay": {}, "hmm": {}, "well": {},
}

// confidenceKeywords are tokens that signal ownership and certainty.
var confidenceKeywords = map[string]struct{}{
	"confident": {}, "confidence": {}, "sure": {}, "certain": {},
	"definitely": {}, "clearly": {}, "successfully": {}, "achieved": {},
	"delivered": {}, "led": {}, "improved": {}, "increased": {},
	"reduced": {}, "owned": {}, "drove": {},
}

var (
	// RE2 has no backreferences, so repeated runs are spelled out per rune.
	repeatedPunctRe = regexp.MustCompile(`!{2,}|\?{2,}|\.{2,}|,{2,}|;{2,}|:{2,}`)
	digitRunRe      = regexp.MustCompile(`\d{4,}`)
)

// HeuristicInput is everything the heuristic scorer looks at.
type HeuristicInput struct {
	Transcript            string
	RawText               string
	Tags                  []string
	Prompt                string
	DurationSec           int
	FacialExpressionScore int
	ConfidenceSelfRating  int
	AnswerType            string
}

// HeuristicResult is the deterministic baseline evaluation.
// Overall, Clarity and Relevance are filled in during fusion.
type HeuristicResult struct {
	Scores           domain.MetricScoreSet
	SpeakingSpeedWpm int
	RelevanceNote    string
}

// Heuristic computes baseline per-metric scores from answer text alone.
// Pure and deterministic: identical input yields identical output, and it
// never fails.
func Heuristic(in HeuristicInput) HeuristicResult {
	raw := in.RawText
	if raw == "" {
		raw = in.Transcript
	}
	tokens := textx.Tokenize(in.Transcript)
	wc := len(tokens)
	empty := strings.TrimSpace(in.Transcript) == ""

	wpm := speakingWpm(wc, in.DurationSec)
	res := HeuristicResult{SpeakingSpeedWpm: int(math.Round(wpm))}
	res.Scores.Communication = communicationScore(in.Transcript, tokens)
	res.Scores.Grammar = grammarScore(raw, tokens, empty)
	res.Scores.Confidence = confidenceScore(in.Transcript, tokens, in.ConfidenceSelfRating, empty)
	res.Scores.SpeakingSpeed = speakingSpeedScore(wpm)
	res.Scores.TechnicalAccuracy, res.RelevanceNote = technicalAccuracy(tokens, in.Tags, in.Prompt, empty)
	res.Scores.FacialExpression = facialExpressionScore(in.AnswerType, in.FacialExpressionScore)
	return res
}

func communicationScore(transcript string, tokens []string) int {
	wc := len(tokens)
	score := 55.0
	if wc >= 35 {
		score = 68.0
	}
	sentences := textx.Sentences(transcript)
	avgLen := 0.0
	if len(sentences) > 0 {
		avgLen = float64(wc) / float64(len(sentences))
	}
	if avgLen >= 9 && avgLen <= 24 {
		score += 12
	} else {
		score -= 8
	}
	if wc > 0 {
		fillers := 0
		for _, t := range tokens {
			if _, ok := fillerWords[t]; ok {
				fillers++
			}
		}
		score -= float64(fillers) / float64(wc) * 120
	}
	return clampScore(score)
}

func grammarScore(raw string, tokens []string, empty bool) int {
	if empty {
		return 35
	}
	score := 58.0
	if len(textx.Sentences(raw)) >= 2 {
		score += 12
	}
	trimmed := strings.TrimSpace(raw)
	if strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, "!") || strings.HasSuffix(trimmed, "?") {
		score += 8
	}
	if len(tokens) > 20 && hasCapitalizedWord(raw) {
		score += 6
	}
	score -= 6 * float64(len(repeatedPunctRe.FindAllString(raw, -1)))
	for _, t := range tokens {
		if digitRunRe.MatchString(t) {
			score -= 2
		}
	}
	return clampScore(score)
}

func hasCapitalizedWord(raw string) bool {
	for _, w := range strings.Fields(raw) {
		r := []rune(w)
		if len(r) > 0 && r[0] >= 'A' && r[0] <= 'Z' {
			return true
		}
	}
	return false
}

func confidenceScore(transcript string, tokens []string, selfRating int, empty bool) int {
	if empty {
		return 35
	}
	hits := 0
	for _, t := range tokens {
		if _, ok := confidenceKeywords[t]; ok {
			hits++
		}
	}
	bonus := math.Min(18, float64(3*hits))
	score := 58 + bonus
	if selfRating > 0 {
		score = score*0.75 + float64(selfRating*10)*0.25
	}
	if strings.Count(transcript, "?") > 2 {
		score -= 5
	}
	return clampScore(score)
}

func speakingWpm(wc, durationSec int) float64 {
	if durationSec > 0 {
		return float64(wc) / float64(durationSec) * 60
	}
	return float64(wc * 2)
}

func speakingSpeedScore(wpm float64) int {
	switch {
	case wpm < 70 || wpm > 220:
		return 42
	case wpm >= 110 && wpm <= 160:
		return 90
	case wpm >= 90 && wpm < 110:
		return 78
	case wpm > 160 && wpm <= 190:
		return 74
	default:
		return 50
	}
}

// Relevance notes attached at the coverage thresholds of §technicalAccuracy.
const (
	noteStrongCoverage  = "Answer covers the key concepts for this question well."
	notePartialCoverage = "Answer touches some of the expected concepts; go deeper on the core topics."
	noteWeakCoverage    = "Answer misses most of the concepts this question asks about."
)

func technicalAccuracy(answerTokens []string, tags []string, prompt string, empty bool) (int, string) {
	if empty {
		return 30, noteWeakCoverage
	}
	expected := make(map[string]struct{})
	for _, tag := range tags {
		for t := range textx.TokenSet(tag, 4) {
			expected[t] = struct{}{}
		}
	}
	for t := range textx.TokenSet(prompt, 6) {
		expected[t] = struct{}{}
	}
	if len(expected) == 0 {
		return 72, ""
	}
	answerSet := make(map[string]struct{}, len(answerTokens))
	for _, t := range answerTokens {
		answerSet[t] = struct{}{}
	}
	overlap := 0
	for t := range expected {
		if _, ok := answerSet[t]; ok {
			overlap++
		}
	}
	coverage := float64(overlap) / float64(len(expected))
	score := clampScore(35 + coverage*65)
	switch {
	case coverage >= 0.6:
		return score, noteStrongCoverage
	case coverage >= 0.35:
		return score, notePartialCoverage
	default:
		return score, noteWeakCoverage
	}
}

func facialExpressionScore(answerType string, provided int) int {
	if answerType != domain.AnswerTypeVideo {
		return 60
	}
	if provided <= 0 {
		return 68
	}
	return clampScore(float64(provided))
}

func clampScore(v float64) int {
	r := int(math.Round(v))
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}
