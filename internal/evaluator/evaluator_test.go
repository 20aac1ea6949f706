package evaluator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/evaluator"
)

type scoreProvider struct {
	name  string
	value int
	err   error
	delay time.Duration
}

func (p *scoreProvider) Name() string { return p.name }

func (p *scoreProvider) Evaluate(ctx domain.Context, _ domain.EvalInput) (*domain.ProviderOutcome, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.err != nil {
		return nil, p.err
	}
	v := p.value
	return &domain.ProviderOutcome{
		Source:        p.name,
		Communication: &v,
		Grammar:       &v,
	}, nil
}

func (p *scoreProvider) GenerateText(domain.Context, string, string, float64, int) (string, error) {
	return "", errors.New("not used")
}

var testQuestion = domain.QuestionRecord{
	ID:       "q1",
	Category: domain.CategoryTechnical,
	Prompt:   "Explain database indexing.",
	Tags:     []string{"database", "index"},
}

func textSubmission(transcript string) domain.AnswerSubmission {
	return domain.AnswerSubmission{
		Transcript:  transcript,
		DurationSec: 30,
		AnswerType:  domain.AnswerTypeText,
	}
}

func TestEvaluate_EmptyTranscriptRejected(t *testing.T) {
	t.Parallel()
	e := evaluator.New(nil, time.Second)
	_, err := e.Evaluate(context.Background(), textSubmission("   "), testQuestion, domain.Session{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestEvaluate_OutOfRangeFieldsRejected(t *testing.T) {
	t.Parallel()
	e := evaluator.New(nil, time.Second)
	sub := textSubmission("a valid answer about indexes")
	sub.ConfidenceSelfRating = 99
	_, err := e.Evaluate(context.Background(), sub, testQuestion, domain.Session{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInternal)
}

func TestEvaluate_NoProvidersIsHeuristicOnly(t *testing.T) {
	t.Parallel()
	e := evaluator.New(nil, time.Second)
	res, err := e.Evaluate(context.Background(), textSubmission("the index keeps a sorted structure so lookups skip most rows"), testQuestion, domain.Session{})
	require.NoError(t, err)
	assert.Equal(t, []string{"heuristic"}, res.Sources)
	assert.GreaterOrEqual(t, res.Scores.Overall, 0)
	assert.LessOrEqual(t, res.Scores.Overall, 100)
}

func TestEvaluate_FailingProviderIsAbsorbed(t *testing.T) {
	t.Parallel()
	providers := []domain.Provider{
		&scoreProvider{name: "ok", value: 80},
		&scoreProvider{name: "down", err: errors.New("connection refused")},
	}
	e := evaluator.New(providers, time.Second)
	res, err := e.Evaluate(context.Background(), textSubmission("the index keeps a sorted structure so lookups skip most rows"), testQuestion, domain.Session{})
	require.NoError(t, err)
	assert.Equal(t, []string{"heuristic", "ok"}, res.Sources)
}

func TestEvaluate_TimedOutProviderIsAbsorbed(t *testing.T) {
	t.Parallel()
	providers := []domain.Provider{
		&scoreProvider{name: "slow", value: 90, delay: 2 * time.Second},
		&scoreProvider{name: "fast", value: 70},
	}
	e := evaluator.New(providers, 50*time.Millisecond)
	start := time.Now()
	res, err := e.Evaluate(context.Background(), textSubmission("the index keeps a sorted structure so lookups skip most rows"), testQuestion, domain.Session{})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second, "slow provider must not block the evaluation")
	assert.Equal(t, []string{"heuristic", "fast"}, res.Sources)
}

func TestEvaluate_AllProvidersReported(t *testing.T) {
	t.Parallel()
	providers := []domain.Provider{
		&scoreProvider{name: "a", value: 80},
		&scoreProvider{name: "b", value: 90},
	}
	e := evaluator.New(providers, time.Second)
	res, err := e.Evaluate(context.Background(), textSubmission("the index keeps a sorted structure so lookups skip most rows"), testQuestion, domain.Session{})
	require.NoError(t, err)
	assert.Equal(t, []string{"heuristic", "a", "b"}, res.Sources)
	assert.Equal(t, res.Scores.Communication, res.Scores.Clarity)
}
