// Package usecase contains application business logic services.
package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/dialogue"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/evaluator"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/followup"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/scoring"
)

// conflictRetries bounds reload-and-reapply attempts on a stale write.
const conflictRetries = 3

// SessionService orchestrates session lifecycle, answer evaluation and chat.
type SessionService struct {
	Sessions   domain.SessionRepository
	Bank       domain.QuestionBank
	Evaluator  *evaluator.Engine
	Followups  *followup.Generator
	Dialogue   *dialogue.Engine
	History    domain.KVStore
	Training   domain.TrainingSink // optional, best-effort
	HistoryTTL time.Duration
}

// NewSessionService constructs a SessionService with its dependencies.
func NewSessionService(
	sessions domain.SessionRepository,
	bank domain.QuestionBank,
	eval *evaluator.Engine,
	followups *followup.Generator,
	dlg *dialogue.Engine,
	history domain.KVStore,
	training domain.TrainingSink,
	historyTTL time.Duration,
) SessionService {
	if historyTTL <= 0 {
		historyTTL = 2 * time.Hour
	}
	return SessionService{
		Sessions:   sessions,
		Bank:       bank,
		Evaluator:  eval,
		Followups:  followups,
		Dialogue:   dlg,
		History:    history,
		Training:   training,
		HistoryTTL: historyTTL,
	}
}

// CreateSessionInput carries the fields needed to start a session.
type CreateSessionInput struct {
	Mode               string
	Category           string
	TargetRole         string
	CompanySimulation  string
	JobDescriptionText string
	QuestionCount      int
}

// CreateSession samples questions and persists a new active session.
func (s SessionService) CreateSession(ctx domain.Context, in CreateSessionInput) (domain.Session, error) {
	if in.Mode != domain.ModeJudge && in.Mode != domain.ModeLiveInterviewer {
		return domain.Session{}, fmt.Errorf("%w: mode must be %q or %q", domain.ErrInvalidArgument, domain.ModeJudge, domain.ModeLiveInterviewer)
	}
	if in.QuestionCount <= 0 {
		in.QuestionCount = 5
	}
	if in.QuestionCount > 10 {
		in.QuestionCount = 10
	}
	if in.Category == "" {
		in.Category = domain.CategoryTechnical
	}

	sampled, err := s.Bank.Sample(ctx, []string{in.Category}, in.QuestionCount)
	if err != nil {
		return domain.Session{}, fmt.Errorf("op=session.create: %w", err)
	}
	questions := make([]domain.SessionQuestion, len(sampled))
	for i, q := range sampled {
		questions[i] = domain.SessionQuestion{Question: q}
	}

	sess := domain.Session{
		Mode:               in.Mode,
		Category:           in.Category,
		TargetRole:         in.TargetRole,
		CompanySimulation:  in.CompanySimulation,
		JobDescriptionText: in.JobDescriptionText,
		Status:             domain.SessionActive,
		Questions:          questions,
	}
	id, err := s.Sessions.Create(ctx, sess)
	if err != nil {
		return domain.Session{}, err
	}
	return s.Sessions.Get(ctx, id)
}

// GetSession loads a session by id.
func (s SessionService) GetSession(ctx domain.Context, id string) (domain.Session, error) {
	return s.Sessions.Get(ctx, id)
}

// SubmitAnswerResult pairs the evaluation with the follow-up prompt.
type SubmitAnswerResult struct {
	QuestionID string
	Evaluation domain.EvaluationResult
	FollowUp   string
	Completed  bool
}

// SubmitAnswer evaluates the answer to the given question and persists the
// result under the session's optimistic version. An answered question is
// immutable; re-submission is a conflict.
func (s SessionService) SubmitAnswer(ctx domain.Context, sessionID, questionID string, sub domain.AnswerSubmission) (SubmitAnswerResult, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return SubmitAnswerResult{}, err
	}
	if sess.Status != domain.SessionActive {
		return SubmitAnswerResult{}, fmt.Errorf("%w: session is %s", domain.ErrConflict, sess.Status)
	}

	idx, err := findQuestion(sess, questionID)
	if err != nil {
		return SubmitAnswerResult{}, err
	}
	if sess.Questions[idx].Answered() {
		return SubmitAnswerResult{}, fmt.Errorf("%w: question %s already answered", domain.ErrConflict, questionID)
	}

	sub.AnsweredAt = time.Now().UTC()
	result, err := s.Evaluator.Evaluate(ctx, sub, sess.Questions[idx].Question, sess)
	if err != nil {
		return SubmitAnswerResult{}, err
	}

	err = s.updateWithRetry(ctx, sessionID, func(cur *domain.Session) error {
		i, ferr := findQuestion(*cur, questionID)
		if ferr != nil {
			return ferr
		}
		if cur.Questions[i].Answered() {
			return fmt.Errorf("%w: question %s already answered", domain.ErrConflict, questionID)
		}
		cur.Questions[i].Submission = &sub
		cur.Questions[i].Evaluation = &result
		return nil
	})
	if err != nil {
		return SubmitAnswerResult{}, err
	}

	s.publishTraining(ctx, sess, sess.Questions[idx].Question, sub, result)

	next := s.Followups.Next(ctx, sess.Questions[idx].Question.Category, sess.TargetRole, sess.Questions[idx].Question.Prompt, result.Transcript)
	return SubmitAnswerResult{
		QuestionID: sess.Questions[idx].Question.ID,
		Evaluation: result,
		FollowUp:   next,
	}, nil
}

// Chat resolves one inbound message through the dialogue engine, keeping
// history in the TTL store scoped to the session.
func (s SessionService) Chat(ctx domain.Context, sessionID, message string) (string, error) {
	sess, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}

	history, err := s.loadHistory(ctx, sessionID)
	if err != nil {
		slog.Warn("dialogue history unavailable; continuing without it",
			slog.String("session_id", sessionID), slog.Any("error", err))
		history = nil
	}

	dctx := &domain.DialogueContext{
		Mode:    sess.Mode,
		Session: sess,
		History: history,
	}
	if q, ok := sess.CurrentQuestion(); ok {
		dctx.CurrentQuestion = q.Question
	}
	if a, ok := sess.LastAnswered(); ok {
		dctx.CurrentAnswer = &a
	}

	reply, err := s.Dialogue.Reply(ctx, message, dctx)
	if err != nil {
		return "", err
	}

	role := "interviewer"
	if sess.Mode == domain.ModeJudge {
		role = "judge"
	}
	dctx.AppendTurn("candidate", message)
	dctx.AppendTurn(role, reply)
	if err := s.saveHistory(ctx, sessionID, dctx.History); err != nil {
		slog.Warn("dialogue history save failed",
			slog.String("session_id", sessionID), slog.Any("error", err))
	}
	return reply, nil
}

// Complete aggregates all answered questions into the session summary and
// marks the session completed. The summary is computed once; a second
// Complete call is a conflict.
func (s SessionService) Complete(ctx domain.Context, sessionID string) (domain.SessionMetricsSummary, error) {
	var summary domain.SessionMetricsSummary
	err := s.updateWithRetry(ctx, sessionID, func(cur *domain.Session) error {
		if cur.Status == domain.SessionCompleted {
			return fmt.Errorf("%w: session already completed", domain.ErrConflict)
		}
		agg, aerr := scoring.Aggregate(cur.Questions, cur.JobDescriptionText)
		if aerr != nil {
			return aerr
		}
		summary = agg
		cur.Summary = &summary
		cur.Status = domain.SessionCompleted
		return nil
	})
	if err != nil {
		return domain.SessionMetricsSummary{}, err
	}
	return summary, nil
}

// updateWithRetry applies mutate to a fresh session snapshot and writes it
// back, reloading on ErrConflict up to conflictRetries times.
func (s SessionService) updateWithRetry(ctx domain.Context, sessionID string, mutate func(*domain.Session) error) error {
	var lastErr error
	for attempt := 0; attempt < conflictRetries; attempt++ {
		cur, err := s.Sessions.Get(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := mutate(&cur); err != nil {
			return err
		}
		if err := s.Sessions.Update(ctx, cur); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				lastErr = err
				continue
			}
			return err
		}
		return nil
	}
	return fmt.Errorf("op=session.update_retry id=%s: %w", sessionID, lastErr)
}

func (s SessionService) publishTraining(ctx domain.Context, sess domain.Session, q domain.QuestionRecord, sub domain.AnswerSubmission, result domain.EvaluationResult) {
	if s.Training == nil {
		return
	}
	rec := domain.TrainingRecord{
		SessionID:  sess.ID,
		QuestionID: q.ID,
		Category:   q.Category,
		Prompt:     q.Prompt,
		Transcript: sub.Transcript,
		Result:     result,
	}
	if err := s.Training.PublishEvaluation(ctx, rec); err != nil {
		slog.Warn("training record publish failed",
			slog.String("session_id", sess.ID),
			slog.String("question_id", q.ID),
			slog.Any("error", err))
	}
}

func (s SessionService) historyKey(sessionID string) string { return "dialogue:" + sessionID }

func (s SessionService) loadHistory(ctx domain.Context, sessionID string) ([]domain.DialogueTurn, error) {
	raw, found, err := s.History.Get(ctx, s.historyKey(sessionID))
	if err != nil || !found {
		return nil, err
	}
	var turns []domain.DialogueTurn
	if err := json.Unmarshal([]byte(raw), &turns); err != nil {
		return nil, fmt.Errorf("op=session.load_history: %w", err)
	}
	return turns, nil
}

func (s SessionService) saveHistory(ctx domain.Context, sessionID string, turns []domain.DialogueTurn) error {
	raw, err := json.Marshal(turns)
	if err != nil {
		return fmt.Errorf("op=session.save_history: %w", err)
	}
	return s.History.Set(ctx, s.historyKey(sessionID), string(raw), s.HistoryTTL)
}

func findQuestion(sess domain.Session, questionID string) (int, error) {
	if questionID == "" {
		for i, q := range sess.Questions {
			if !q.Answered() {
				return i, nil
			}
		}
		return 0, fmt.Errorf("%w: all questions answered", domain.ErrConflict)
	}
	for i, q := range sess.Questions {
		if q.Question.ID == questionID {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: question %s not in session", domain.ErrNotFound, questionID)
}
