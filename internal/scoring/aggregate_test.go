package scoring_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/scoring"
)

func answeredQuestion(overall int, metrics domain.MetricScoreSet, transcript string) domain.SessionQuestion {
	metrics.Overall = overall
	return domain.SessionQuestion{
		Question:   domain.QuestionRecord{ID: "q", Category: domain.CategoryTechnical},
		Submission: &domain.AnswerSubmission{Transcript: transcript},
		Evaluation: &domain.EvaluationResult{Scores: metrics, Transcript: transcript},
	}
}

func flatMetrics(v int) domain.MetricScoreSet {
	return domain.MetricScoreSet{
		Confidence:        v,
		Communication:     v,
		Grammar:           v,
		TechnicalAccuracy: v,
		SpeakingSpeed:     v,
		FacialExpression:  v,
	}
}

func TestAggregate_RequiresAnsweredQuestion(t *testing.T) {
	t.Parallel()
	questions := []domain.SessionQuestion{
		{Question: domain.QuestionRecord{ID: "q1"}},
	}
	_, err := scoring.Aggregate(questions, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestAggregate_OverallMean(t *testing.T) {
	t.Parallel()
	questions := []domain.SessionQuestion{
		answeredQuestion(60, flatMetrics(60), "first answer"),
		answeredQuestion(70, flatMetrics(70), "second answer"),
		answeredQuestion(80, flatMetrics(80), "third answer"),
		{Question: domain.QuestionRecord{ID: "unanswered"}},
	}
	summary, err := scoring.Aggregate(questions, "")
	require.NoError(t, err)
	assert.Equal(t, 70, summary.Averages.Overall)
	assert.Equal(t, 3, summary.AnsweredCount)
	assert.Equal(t, 0, summary.JobFitScore, "no job description means not computed")
}

func TestAggregate_StrengthAndImprovementClassification(t *testing.T) {
	t.Parallel()
	metrics := flatMetrics(70)
	metrics.Grammar = 82        // averages to a strength
	metrics.SpeakingSpeed = 55 // averages to an improvement
	questions := []domain.SessionQuestion{
		answeredQuestion(70, metrics, "the answer"),
	}
	summary, err := scoring.Aggregate(questions, "")
	require.NoError(t, err)
	assert.Contains(t, summary.Strengths[0], "sentences")
	assert.Contains(t, summary.Improvements[0], "pace")
	assert.Contains(t, summary.Recommendation, "speaking speed")
}

func TestAggregate_DefaultLinesWhenNothingQualifies(t *testing.T) {
	t.Parallel()
	questions := []domain.SessionQuestion{
		answeredQuestion(70, flatMetrics(70), "the answer"),
	}
	summary, err := scoring.Aggregate(questions, "")
	require.NoError(t, err)
	assert.Len(t, summary.Strengths, 1)
	assert.Len(t, summary.Improvements, 1)
}

func TestAggregate_JobFitAndWarning(t *testing.T) {
	t.Parallel()
	jd := "kubernetes docker golang postgres terraform"
	questions := []domain.SessionQuestion{
		answeredQuestion(70, flatMetrics(70), "I deploy with kubernetes and docker every day"),
	}
	summary, err := scoring.Aggregate(questions, jd)
	require.NoError(t, err)
	// 2 of 5 keyword tokens covered.
	assert.Equal(t, 40, summary.JobFitScore)
	assert.Contains(t, summary.Recommendation, "job description")
}

func TestAggregate_HighJobFitNoWarning(t *testing.T) {
	t.Parallel()
	jd := "kubernetes docker"
	questions := []domain.SessionQuestion{
		answeredQuestion(70, flatMetrics(70), "I use kubernetes and docker daily in production"),
	}
	summary, err := scoring.Aggregate(questions, jd)
	require.NoError(t, err)
	assert.Equal(t, 100, summary.JobFitScore)
	assert.NotContains(t, summary.Recommendation, "job description")
}

func TestJobFit_MinimumOneWhenComputed(t *testing.T) {
	t.Parallel()
	questions := []domain.SessionQuestion{
		answeredQuestion(70, flatMetrics(70), "nothing relevant here"),
	}
	assert.Equal(t, 1, scoring.JobFit(questions, "kubernetes terraform"))
	assert.Equal(t, 0, scoring.JobFit(questions, ""))
}
