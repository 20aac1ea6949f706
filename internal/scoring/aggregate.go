package scoring

import (
	"fmt"
	"math"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/pkg/textx"
)

// jobFitWarnBelow triggers the low-fit warning appended to the recommendation.
const jobFitWarnBelow = 55

var recommendationAdvice = map[string]string{
	"confidence":        "practice stating your results with ownership before the next round",
	"communication":     "rehearse shorter, structured sentences and drop the fillers",
	"grammar":           "slow down enough to finish each sentence cleanly",
	"technical accuracy": "review the core topics for your target role before the next session",
	"speaking speed":    "work on pacing toward a steady conversational speed",
	"facial expression": "record yourself and practice a relaxed on-camera presence",
}

// Aggregate folds all answered questions into a session summary. It requires
// at least one answered question. JobFitScore stays 0 ("not computed") when
// no job description was supplied.
func Aggregate(questions []domain.SessionQuestion, jobDescription string) (domain.SessionMetricsSummary, error) {
	var answered []domain.SessionQuestion
	for _, q := range questions {
		if q.Answered() {
			answered = append(answered, q)
		}
	}
	if len(answered) == 0 {
		return domain.SessionMetricsSummary{}, fmt.Errorf("%w: session has no answered questions", domain.ErrInvalidArgument)
	}

	var avg domain.MetricScoreSet
	n := float64(len(answered))
	for _, f := range metricFields {
		sum := 0
		for _, q := range answered {
			sum += f.get(q.Evaluation.Scores)
		}
		f.set(&avg, int(math.Round(float64(sum)/n)))
	}
	overallSum := 0
	for _, q := range answered {
		overallSum += q.Evaluation.Scores.Overall
	}
	avg.Overall = int(math.Round(float64(overallSum) / n))
	avg.Clarity = avg.Communication
	avg.Relevance = avg.TechnicalAccuracy

	strengths := deriveStrengths(avg)
	improvements := deriveImprovements(avg)

	weakest, _ := WeakestMetric(avg)
	recommendation := fmt.Sprintf("Your weakest area is %s: %s.", weakest, recommendationAdvice[weakest])

	summary := domain.SessionMetricsSummary{
		Averages:       avg,
		Strengths:      strengths,
		Improvements:   improvements,
		Recommendation: recommendation,
		AnsweredCount:  len(answered),
	}

	if fit := JobFit(answered, jobDescription); fit > 0 {
		summary.JobFitScore = fit
		if fit < jobFitWarnBelow {
			summary.Recommendation += " Your answers overlap little with the job description; weave in more of its required skills."
		}
	}

	return summary, nil
}

// JobFit recomputes only the job-fit portion, used to backfill summaries
// stored before a job description was added.
func JobFit(questions []domain.SessionQuestion, jobDescription string) int {
	jd := textx.TokenSet(jobDescription, 4)
	if len(jd) == 0 {
		return 0
	}
	answerTokens := make(map[string]struct{})
	for _, q := range questions {
		if !q.Answered() {
			continue
		}
		for t := range textx.TokenSet(q.Submission.Transcript, 1) {
			answerTokens[t] = struct{}{}
		}
	}
	hits := 0
	for t := range jd {
		if _, ok := answerTokens[t]; ok {
			hits++
		}
	}
	fit := int(math.Round(float64(hits) / float64(len(jd)) * 100))
	if fit < 1 {
		fit = 1 // 0 is reserved for "not computed"
	}
	return fit
}
