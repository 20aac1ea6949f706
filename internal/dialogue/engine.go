// Package dialogue implements the conversational judge/interviewer. Intent
// classification is synchronous and network-free; at most one provider call
// is issued per inbound message.
package dialogue

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/adapter/ai/tokencount"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/followup"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/observability"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/scoring"
	"github.com/fairyhunter13/ai-interview-evaluator/pkg/textx"
)

const (
	judgeInstruction       = "You are a strict interview judge. Be concise and direct. Critique the candidate's latest message against the current question in at most three sentences."
	interviewerInstruction = "You are a friendly human interviewer running a mock interview. Be conversational and supportive. Respond naturally to the candidate's latest message, staying on the current question."

	judgeTemperature       = 0.3
	interviewerTemperature = 0.7

	sampleInstruction = "You are an interview coach. Write one concise model answer to the interview question below. Output only the answer."
	directInstruction = "You are an experienced interviewer. Answer the candidate's question below briefly and accurately, in at most four sentences."
)

// Engine resolves one inbound chat message into exactly one reply.
type Engine struct {
	bank        domain.QuestionBank
	providers   []domain.Provider
	followups   *followup.Generator
	tokenBudget int
}

// New constructs an Engine. tokenBudget bounds the context block handed to
// the augmentation call.
func New(bank domain.QuestionBank, providers []domain.Provider, followups *followup.Generator, tokenBudget int) *Engine {
	if tokenBudget <= 0 {
		tokenBudget = 1200
	}
	return &Engine{bank: bank, providers: providers, followups: followups, tokenBudget: tokenBudget}
}

// Reply classifies the message and returns one role-prefixed reply.
// Provider failures anywhere below degrade to deterministic templates and
// never surface to the caller.
func (e *Engine) Reply(ctx domain.Context, message string, dctx *domain.DialogueContext) (string, error) {
	message = textx.SanitizeText(message)
	if message == "" {
		return "", fmt.Errorf("%w: message empty", domain.ErrInvalidArgument)
	}

	intent := Classify(dctx.Mode, message)
	observability.DialogueIntentsTotal.WithLabelValues(dctx.Mode, string(intent.Kind)).Inc()
	slog.Debug("dialogue intent resolved",
		slog.String("mode", dctx.Mode),
		slog.String("intent", string(intent.Kind)))

	var body string
	switch intent.Kind {
	case IntentGreeting:
		if len(dctx.History) == 0 {
			body = welcomeLine(dctx.Mode)
		} else {
			body = greetingOpener(dctx.Mode)
		}
	case IntentRepeatQuestion:
		body = fmt.Sprintf("The question is: %q", dctx.CurrentQuestion.Prompt)
	case IntentExplain:
		body = explanationFor(dctx.CurrentQuestion)
	case IntentHint:
		body = starterFor(dctx.CurrentQuestion)
		if dctx.Mode == domain.ModeJudge {
			body = starMiniTemplate + " " + body
		}
	case IntentSampleAnswer:
		body = "Here's a model answer. " + e.sampleAnswer(ctx, dctx.CurrentQuestion)
	case IntentScoreRequest:
		body = scoreReply(dctx)
	case IntentLanguageSwitch:
		body = "Happy to switch. Answer in whichever language you're most comfortable with; I'll keep my scoring notes in English."
	case IntentQAPack:
		var err error
		body, err = e.qaPack(ctx, intent, dctx)
		if err != nil {
			return "", err
		}
	case IntentDirectQuestion:
		body = e.directAnswer(ctx, message)
	default:
		body = e.narrative(ctx, message, dctx)
	}

	return rolePrefix(dctx.Mode) + " " + body, nil
}

// sampleAnswer issues at most one generation call and falls back to the
// deterministic template.
func (e *Engine) sampleAnswer(ctx domain.Context, q domain.QuestionRecord) string {
	prompt := fmt.Sprintf("Category: %s\nQuestion: %s", q.Category, q.Prompt)
	if text := e.generateOnce(ctx, sampleInstruction, prompt, 0.4, 200); text != "" {
		return text
	}
	return sampleAnswerFor(q)
}

// directAnswer answers a question put to the interviewer. Known topics are
// answered without a provider call.
func (e *Engine) directAnswer(ctx domain.Context, message string) string {
	if answer, ok := topicAnswerFor(message); ok {
		return answer
	}
	if text := e.generateOnce(ctx, directInstruction, message, 0.4, 220); text != "" {
		return text
	}
	return "That's a fair question. Let's come back to it at the end; for now, let's keep momentum on the current question."
}

// scoreReply reports the current answer's overall score and weakest metric.
func scoreReply(dctx *domain.DialogueContext) string {
	a := dctx.CurrentAnswer
	if a == nil || a.Evaluation == nil {
		return "I haven't scored an answer yet. Answer the current question first and I'll break it down for you."
	}
	name, low := scoring.WeakestMetric(a.Evaluation.Scores)
	return fmt.Sprintf("Your latest answer scored %d overall. Your weakest area is %s at %d; improving it will lift your composite the most.",
		a.Evaluation.Scores.Overall, name, low)
}

// qaPack samples questions from the bank and pairs each with a
// deterministic sample answer. This branch never calls a provider.
func (e *Engine) qaPack(ctx domain.Context, intent Intent, dctx *domain.DialogueContext) (string, error) {
	categories := intent.Categories
	if len(categories) == 0 {
		categories = []string{dctx.Session.Category}
	}
	questions, err := e.bank.Sample(ctx, categories, intent.Count)
	if err != nil {
		return "", fmt.Errorf("op=dialogue.qaPack: %w", err)
	}
	if len(questions) == 0 {
		return "I don't have questions for that category yet. Try Technical, Behavioral, Coding or HR.", nil
	}
	answers := make([]string, len(questions))
	for i, q := range questions {
		answers[i] = sampleAnswerFor(q)
	}
	return formatQAPack(questions, answers), nil
}

// narrative handles free-form candidate messages: a deterministic
// mode-aware fallback, optionally replaced by one augmentation call.
func (e *Engine) narrative(ctx domain.Context, message string, dctx *domain.DialogueContext) string {
	fallback, usedProvider := e.narrativeFallback(ctx, message, dctx)
	if usedProvider {
		return fallback
	}
	if aug := e.augment(ctx, message, dctx); aug != "" {
		return aug
	}
	return fallback
}

// narrativeFallback builds the deterministic reply. The returned bool is
// true when this branch already spent the message's single provider call.
func (e *Engine) narrativeFallback(ctx domain.Context, message string, dctx *domain.DialogueContext) (string, bool) {
	lower := strings.ToLower(message)
	q := dctx.CurrentQuestion

	switch {
	case containsAny(stuckPhrases)(lower):
		return starMiniTemplate + " " + starterFor(q), false

	case containsAny(improvementWord)(lower):
		if a := dctx.CurrentAnswer; a != nil && a.Evaluation != nil && len(a.Evaluation.Improvements) > 0 {
			return "Focus here first: " + a.Evaluation.Improvements[0], false
		}
		return "Structure every answer with STAR and quantify the result. Concrete numbers are what separate a good answer from a great one.", false

	case containsAny(followupWords)(lower):
		answer := ""
		if a, ok := dctx.Session.LastAnswered(); ok && a.Submission != nil {
			answer = a.Submission.Transcript
		}
		next := e.followups.Next(ctx, q.Category, dctx.Session.TargetRole, q.Prompt, answer)
		return "Here's your next one: " + next, true

	case containsAny(jobFitWords)(lower):
		if s := dctx.Session.Summary; s != nil && s.JobFitScore > 0 {
			return fmt.Sprintf("Based on your answers so far, your job-description fit is %d out of 100.", s.JobFitScore), false
		}
		return "I don't have a fit score yet. Add a job description to the session and finish a few answers, then I can estimate your match.", false

	default:
		note := starCompleteness(message)
		next := followup.Fallback(q.Category, dctx.Session.TargetRole, message)
		return note + " Follow-up: " + next, false
	}
}

// augment issues the single augmentation call with a mode-specific persona.
func (e *Engine) augment(ctx domain.Context, message string, dctx *domain.DialogueContext) string {
	instruction := interviewerInstruction
	temp := interviewerTemperature
	if dctx.Mode == domain.ModeJudge {
		instruction = judgeInstruction
		temp = judgeTemperature
	}
	return e.generateOnce(ctx, instruction, e.contextBlock(message, dctx), temp, 260)
}

// contextBlock renders the session snapshot the augmentation call sees,
// fitted to the token budget. The candidate's message always survives: the
// answer transcript is capped to a share of the budget up front, then
// history turns are dropped oldest first, then the header shrinks.
func (e *Engine) contextBlock(message string, dctx *domain.DialogueContext) string {
	var head strings.Builder
	s := dctx.Session
	fmt.Fprintf(&head, "Session: category=%s role=%s", s.Category, s.TargetRole)
	if s.CompanySimulation != "" {
		fmt.Fprintf(&head, " company=%s", s.CompanySimulation)
	}
	fmt.Fprintf(&head, "\nCurrent question: %s\n", dctx.CurrentQuestion.Prompt)

	if a := dctx.CurrentAnswer; a != nil && a.Evaluation != nil {
		fmt.Fprintf(&head, "Latest answer score: %d overall\n", a.Evaluation.Scores.Overall)
		if t := a.Evaluation.Transcript; t != "" {
			fmt.Fprintf(&head, "Latest answer transcript: %s\n", tokencount.Truncate(t, e.tokenBudget/3))
		}
		for i, imp := range a.Evaluation.Improvements {
			if i == 2 {
				break
			}
			fmt.Fprintf(&head, "Improvement: %s\n", imp)
		}
	}

	turns := make([]string, 0, len(dctx.History))
	for _, turn := range dctx.History {
		turns = append(turns, fmt.Sprintf("%s: %s\n", turn.Role, turn.Text))
	}
	tail := "candidate: " + message

	for len(turns) > 0 {
		block := head.String() + strings.Join(turns, "") + tail
		if tokencount.Count(block) <= e.tokenBudget {
			return block
		}
		turns = turns[1:]
	}
	block := head.String() + tail
	if tokencount.Count(block) <= e.tokenBudget {
		return block
	}
	keep := e.tokenBudget - tokencount.Count(tail)
	return tokencount.Truncate(head.String(), keep) + "\n" + tail
}

// generateOnce walks the provider list and returns the first usable text.
// An empty string means every provider failed or returned nothing.
func (e *Engine) generateOnce(ctx domain.Context, instruction, prompt string, temperature float64, maxTokens int) string {
	for _, p := range e.providers {
		text, err := p.GenerateText(ctx, instruction, prompt, temperature, maxTokens)
		if err != nil {
			slog.Debug("dialogue generation failed",
				slog.String("provider", p.Name()),
				slog.Any("error", err))
			continue
		}
		if clean := strings.TrimSpace(textx.StripRoleLabel(text)); clean != "" {
			return clean
		}
	}
	return ""
}
