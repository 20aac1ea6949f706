// Package evaluator orchestrates one answer evaluation: heuristic baseline,
// concurrent best-effort provider fan-out, then score fusion.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/observability"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/scoring"
	"github.com/fairyhunter13/ai-interview-evaluator/pkg/textx"
)

// Engine fans an answer out to the configured providers. Providers is an
// ordered list; an empty list degrades to heuristic-only scoring.
type Engine struct {
	providers []domain.Provider
	timeout   time.Duration
}

// New constructs an Engine. timeout bounds each provider call individually.
func New(providers []domain.Provider, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Engine{providers: providers, timeout: timeout}
}

// Evaluate scores one submission against its question. The caller always
// receives a best-effort fused result unless the transcript itself is
// unusable; provider failures are absorbed here and never propagate.
func (e *Engine) Evaluate(ctx domain.Context, sub domain.AnswerSubmission, q domain.QuestionRecord, sess domain.Session) (domain.EvaluationResult, error) {
	tracer := otel.Tracer("evaluator")
	ctx, span := tracer.Start(ctx, "evaluator.Evaluate")
	defer span.End()

	transcript := textx.SanitizeText(sub.Transcript)
	if transcript == "" {
		transcript = textx.SanitizeText(sub.RawText)
	}
	if transcript == "" {
		return domain.EvaluationResult{}, fmt.Errorf("%w: transcript empty", domain.ErrInvalidArgument)
	}
	if sub.DurationSec < 0 || sub.FacialExpressionScore < 0 || sub.FacialExpressionScore > 100 ||
		sub.ConfidenceSelfRating < 0 || sub.ConfidenceSelfRating > 10 {
		return domain.EvaluationResult{}, fmt.Errorf("%w: submission fields out of range", domain.ErrInternal)
	}

	h := scoring.Heuristic(scoring.HeuristicInput{
		Transcript:            transcript,
		RawText:               sub.RawText,
		Tags:                  q.Tags,
		Prompt:                q.Prompt,
		DurationSec:           sub.DurationSec,
		FacialExpressionScore: sub.FacialExpressionScore,
		ConfidenceSelfRating:  sub.ConfidenceSelfRating,
		AnswerType:            sub.AnswerType,
	})

	in := domain.EvalInput{
		Transcript:     transcript,
		QuestionPrompt: q.Prompt,
		Category:       q.Category,
		TargetRole:     sess.TargetRole,
		Tags:           q.Tags,
		DurationSec:    sub.DurationSec,
	}

	// Concurrent fan-out. Each provider gets its own timeout and its own
	// slot in outcomes, so there is no shared mutable state between calls.
	// Fusion waits for every call to resolve; partial results are fine,
	// stale ones are not.
	outcomes := make([]*domain.ProviderOutcome, len(e.providers))
	var wg sync.WaitGroup
	for i, p := range e.providers {
		wg.Add(1)
		go func(i int, p domain.Provider) {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, e.timeout)
			defer cancel()
			out, err := p.Evaluate(cctx, in)
			if err != nil {
				observability.ProviderFailuresTotal.WithLabelValues(p.Name(), failureReason(err)).Inc()
				slog.Warn("provider evaluation failed; degrading",
					slog.String("provider", p.Name()),
					slog.Any("error", err))
				return
			}
			outcomes[i] = out
		}(i, p)
	}
	wg.Wait()

	fused := scoring.Fuse(h, outcomes, transcript)
	observability.EvaluationsTotal.WithLabelValues(strconv.Itoa(len(fused.Sources) - 1)).Inc()
	slog.Info("answer evaluated",
		slog.String("question_id", q.ID),
		slog.Int("overall", fused.Scores.Overall),
		slog.Int("providers", len(fused.Sources)-1))
	return fused, nil
}

func failureReason(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "deadline"), strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "status"):
		return "status"
	default:
		return "error"
	}
}
